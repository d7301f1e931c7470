// Command segments lists and edits the pricing segment table in MySQL.
//
//	segments list
//	segments set -id member_voyager -name "Member · Voyager" -margin 6 -discount 10
//
// Empty -margin, -markup or -discount store NULL.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/shared"
	mysqlrepo "hotel_bff/internal/storage/mysql"
)

func optFloat(name, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("-%s: %w", name, err)
	}
	return &f, nil
}

// parseSet reads the flags of the set subcommand into a row.
func parseSet(args []string) (domain.SegmentRow, error) {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	id := fs.String("id", "", "segment id")
	name := fs.String("name", "", "display name")
	margin := fs.String("margin", "", "effective margin percent")
	markup := fs.String("markup", "", "additional markup percent")
	discount := fs.String("discount", "", "display discount percent")
	cug := fs.Bool("cug", true, "closed user group segment")
	if err := fs.Parse(args); err != nil {
		return domain.SegmentRow{}, err
	}

	row := domain.SegmentRow{ID: strings.TrimSpace(*id), Name: strings.TrimSpace(*name), IsCug: *cug}
	if row.ID == "" {
		return domain.SegmentRow{}, domain.Invalid("id", "is required")
	}
	if row.Name == "" {
		row.Name = row.ID
	}
	var err error
	if row.EffectiveMargin, err = optFloat("margin", *margin); err != nil {
		return domain.SegmentRow{}, err
	}
	if row.AdditionalMarkup, err = optFloat("markup", *markup); err != nil {
		return domain.SegmentRow{}, err
	}
	if row.DisplayDiscountPercent, err = optFloat("discount", *discount); err != nil {
		return domain.SegmentRow{}, err
	}
	return row, nil
}

func fmtOpt(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: segments list | segments set -id ID [-name N] [-margin M] [-markup A] [-discount D] [-cug=false]")
		os.Exit(2)
	}
	if cfg.MySQLDSN == "" {
		log.Fatal().Msg("MYSQL_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	store := mysqlrepo.New(db)

	switch os.Args[1] {
	case "list":
		rows, err := store.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("list segments")
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tMARGIN\tMARKUP\tDISCOUNT\tCUG")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", r.ID, r.Name,
				fmtOpt(r.EffectiveMargin), fmtOpt(r.AdditionalMarkup), fmtOpt(r.DisplayDiscountPercent), r.IsCug)
		}
		_ = tw.Flush()

	case "set":
		row, err := parseSet(os.Args[2:])
		if err != nil {
			log.Fatal().Err(err).Msg("bad arguments")
		}
		if err := store.Upsert(ctx, row); err != nil {
			log.Fatal().Err(err).Str("segment", row.ID).Msg("upsert failed")
		}
		log.Info().Str("segment", row.ID).Msg("segment saved")

	default:
		log.Fatal().Str("command", os.Args[1]).Msg("unknown command")
	}
}
