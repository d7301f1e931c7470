package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_bff/internal/adapters/http_server"
	"hotel_bff/internal/adapters/liteapi"
	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/adapters/places"
	redisad "hotel_bff/internal/adapters/redis"
	"hotel_bff/internal/app"
	"hotel_bff/internal/catalog"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/identity"
	"hotel_bff/internal/restrict"
	"hotel_bff/internal/shared"
	"hotel_bff/internal/storage/memory"
	mysqlrepo "hotel_bff/internal/storage/mysql"
)

func segmentStore(ctx context.Context, dsn string) domain.SegmentStore {
	if dsn == "" {
		log.Info().Msg("MYSQL_DSN empty, using built-in segment table")
		return memory.NewSegmentStore(memory.DefaultSegments)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	store := mysqlrepo.New(db)
	// fills only missing rows; operator edits survive restarts
	if err := store.Seed(ctx, memory.DefaultSegments); err != nil {
		log.Fatal().Err(err).Msg("segment seed failed")
	}
	return store
}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	codec, err := identity.New(cfg.CookieSecret, !cfg.Dev())
	if err != nil {
		log.Fatal().Err(err).Msg("identity codec")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	segments := segmentStore(ctx, cfg.MySQLDSN)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, hotel details will not be cached")
	}
	cancel()

	// deps
	rs := restrict.Default(cfg.RestrictedPlaceIDs...)
	rates := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIBookBase, cfg.LiteAPIRPS)
	keys := app.NewKeyRing(cfg.LiteAPIKeyB2C, cfg.LiteAPIKeyCUG)
	margins := app.NewMarginResolver(segments, cfg.EmployeeEmailDomain)
	hotels := app.NewHotelService(rates, cache, cfg.CacheTTL)

	h := &server.Handlers{
		Codec:   codec,
		Keys:    keys,
		Margins: margins,
		Places:  app.NewPlacesService(places.New(cfg.PlacesLegacyBase, cfg.PlacesNewBase, cfg.PlacesKey, cfg.PlacesUseNewAPI), rs),
		Hotels:  hotels,
		Rates: app.NewRateService(rates, keys, margins, hotels, rs, app.RatesOptions{
			DefaultTimeout: cfg.SearchTimeout,
			PublishableKey: cfg.PaymentPublishableKey,
			ReturnURL:      cfg.PaymentReturnURL,
		}),
		Catalog: catalog.New(catalog.DefaultCities, rs),
	}

	// http
	srv := server.New(codec, cfg.SearchTimeout+30*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Bool("places_new_api", cfg.PlacesUseNewAPI).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
