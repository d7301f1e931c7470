package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_bff/internal/domain"
)

const (
	MaxBatchIDs    = 80
	BatchChunkSize = 15
)

type HotelService struct {
	rates    domain.RatesClient
	cache    domain.Cache
	cacheTTL time.Duration
	maxIDs   int
	chunk    int
}

func NewHotelService(r domain.RatesClient, c domain.Cache, ttl time.Duration) *HotelService {
	return &HotelService{rates: r, cache: c, cacheTTL: ttl, maxIDs: MaxBatchIDs, chunk: BatchChunkSize}
}

func hotelKey(id string) string { return fmt.Sprintf("hotel:%s", id) }

// Get serves hotel details from cache, falling back to the provider.
func (s *HotelService) Get(ctx context.Context, apiKey, id string) (domain.HotelDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.HotelDetails{}, domain.Invalid("hotelId", "is required")
	}
	var hd domain.HotelDetails
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, hotelKey(id), &hd); ok {
			return hd, nil
		}
	}
	hd, err := s.rates.HotelDetails(ctx, apiKey, id)
	if err != nil {
		return domain.HotelDetails{}, err
	}
	s.store(ctx, hd)
	return hd, nil
}

func (s *HotelService) store(ctx context.Context, hd domain.HotelDetails) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, hotelKey(hd.ID), hd, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("hotel_id", hd.ID).Msg("hotel cache set failed")
	}
}

// Batch resolves up to maxIDs hotels, chunk at a time. Calls inside a chunk run
// concurrently and the next chunk starts when the slowest one is done.
// Failed ids are left out of ByID.
func (s *HotelService) Batch(ctx context.Context, apiKey string, ids []string) (domain.HotelBatch, error) {
	ids = dedupe(ids)
	if len(ids) > s.maxIDs {
		ids = ids[:s.maxIDs]
	}
	out := domain.HotelBatch{IDs: ids, ByID: make(map[string]domain.HotelDetails, len(ids))}
	results := make([]*domain.HotelDetails, len(ids))

	for start := 0; start < len(ids); start += s.chunk {
		end := min(start+s.chunk, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				hd, err := s.Get(gctx, apiKey, ids[i])
				if err != nil {
					if errors.Is(err, domain.ErrUpstreamUnauthorized) {
						return err
					}
					log.Debug().Err(err).Str("hotel_id", ids[i]).Msg("hotel details skipped")
					return nil
				}
				results[i] = &hd
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return domain.HotelBatch{}, err
		}
		if err := ctx.Err(); err != nil {
			return domain.HotelBatch{}, err
		}
	}

	// index-matched, not arrival order
	for i, id := range ids {
		if results[i] != nil {
			out.ByID[id] = *results[i]
		}
	}
	return out, nil
}

// Warm refetches one hotel and overwrites its cache entry. A hotel the provider
// no longer knows is evicted and reported as a miss, not an error.
func (s *HotelService) Warm(ctx context.Context, apiKey, id string) (bool, error) {
	hd, err := s.rates.HotelDetails(ctx, apiKey, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if s.cache != nil {
				if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
					log.Warn().Err(err).Str("hotel_id", id).Msg("hotel cache del failed")
				}
			}
			return false, nil
		}
		return false, err
	}
	if hd.ID == "" {
		hd.ID = id
	}
	s.store(ctx, hd)
	return true, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
