//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_bff/internal/domain"
	"hotel_bff/internal/storage/memory"
	mysqlrepo "hotel_bff/internal/storage/mysql"
)

// ---------- small helpers ----------
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// ---------- the test ----------
func TestSegmentStore_MySQL_SeedUpsertAndRead(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotel_bff",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hotel_bff")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	store := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange: seed the built-in table, then override one row
	if err := store.Seed(ctx, memory.DefaultSegments); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := store.Upsert(ctx, domain.SegmentRow{
		ID:                     domain.SegmentB2B,
		Name:                   "Business",
		EffectiveMargin:        pfloat(4.5),
		AdditionalMarkup:       nil,
		DisplayDiscountPercent: pfloat(0),
		IsCug:                  true,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// Seeding again must not clobber the override
	if err := store.Seed(ctx, memory.DefaultSegments); err != nil {
		t.Fatalf("Seed again: %v", err)
	}

	// Assert
	row, err := store.Segment(ctx, domain.SegmentB2B)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if row.EffectiveMargin == nil || *row.EffectiveMargin != 4.5 || row.AdditionalMarkup != nil {
		t.Fatalf("unexpected segment: %+v", row)
	}

	if _, err := store.Segment(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != len(memory.DefaultSegments) {
		t.Fatalf("expected %d segments, got %d", len(memory.DefaultSegments), len(all))
	}
}
