// Command warmer refreshes the hotel-details cache for a list of hotel ids
// (WARM_HOTEL_IDS, or ids passed as arguments).
package main

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_bff/internal/adapters/liteapi"
	"hotel_bff/internal/adapters/observability"
	redisad "hotel_bff/internal/adapters/redis"
	"hotel_bff/internal/app"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ids := cfg.WarmHotelIDs
	if len(os.Args) > 1 {
		ids = os.Args[1:]
	}
	log.Info().
		Str("base", cfg.LiteAPIBase).
		Int("workers", cfg.WarmWorkers).
		Int("hotels", len(ids)).
		Msg("warmer starting")
	if len(ids) == 0 {
		log.Warn().Msg("nothing to warm: set WARM_HOTEL_IDS or pass ids")
		return
	}

	// guest channel: cached details are shared by every channel
	key, err := app.NewKeyRing(cfg.LiteAPIKeyB2C, cfg.LiteAPIKeyCUG).APIKey(domain.ChannelB2C)
	if err != nil {
		log.Fatal().Err(err).Msg("no provider key")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	hotels := app.NewHotelService(liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIBookBase, cfg.LiteAPIRPS), cache, cfg.CacheTTL)

	workers := cfg.WarmWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var warmed, missed, failed atomic.Int64

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := hotels.Warm(ctx, key, hotelID)
			switch {
			case err != nil:
				failed.Add(1)
				log.Warn().Str("id", hotelID).Err(err).Msg("warm failed")
			case !ok:
				missed.Add(1)
				log.Info().Str("id", hotelID).Msg("hotel unknown to provider, evicted")
			default:
				warmed.Add(1)
				log.Debug().Str("id", hotelID).Msg("warm ok")
			}
		}(id)
	}

	wg.Wait()
	log.Info().
		Int64("warmed", warmed.Load()).
		Int64("missed", missed.Load()).
		Int64("failed", failed.Load()).
		Msg("warming completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
