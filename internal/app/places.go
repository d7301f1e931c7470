package app

import (
	"context"
	"sort"
	"strings"

	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/restrict"
)

type PlacesService struct {
	client   domain.PlacesClient
	restrict *restrict.Set
}

func NewPlacesService(c domain.PlacesClient, r *restrict.Set) *PlacesService {
	return &PlacesService{client: c, restrict: r}
}

// Autocomplete filters restricted suggestions, then ranks cities first.
func (s *PlacesService) Autocomplete(ctx context.Context, input, sessionToken string) ([]domain.Prediction, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []domain.Prediction{}, nil
	}
	// no upstream call for a query that already names a restricted country
	if s.restrict.IsTextIndicatingRestrictedCountry(input) {
		observability.ObserveRestriction("autocomplete", 1)
		return []domain.Prediction{}, nil
	}
	preds, err := s.client.Autocomplete(ctx, input, sessionToken)
	if err != nil {
		return nil, err
	}
	kept := s.restrict.FilterPredictions(preds)
	observability.ObserveRestriction("autocomplete", len(preds)-len(kept))
	RankPredictions(kept)
	return kept, nil
}

// Details hides restricted places behind ErrNotFound, checked before and after the lookup.
func (s *PlacesService) Details(ctx context.Context, placeID, sessionToken string) (domain.Place, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return domain.Place{}, domain.Invalid("placeId", "is required")
	}
	if s.restrict.IsPlaceIDRestricted(placeID) {
		observability.ObserveRestriction("details", 1)
		return domain.Place{}, domain.ErrNotFound
	}
	p, err := s.client.Details(ctx, placeID, sessionToken)
	if err != nil {
		return domain.Place{}, err
	}
	if s.restrict.Place(p) {
		observability.ObserveRestriction("details", 1)
		return domain.Place{}, domain.ErrNotFound
	}
	return p, nil
}

// ReverseGeocode returns the first unrestricted result.
func (s *PlacesService) ReverseGeocode(ctx context.Context, lat, lng float64) (domain.Place, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Place{}, domain.Invalid("lat,lng", "out of range")
	}
	if s.restrict.IsLocationRestricted(lat, lng) {
		observability.ObserveRestriction("geocode", 1)
		return domain.Place{}, domain.ErrNotFound
	}
	results, err := s.client.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return domain.Place{}, err
	}
	for i, p := range results {
		if !s.restrict.Place(p) {
			observability.ObserveRestriction("geocode", i)
			return p, nil
		}
	}
	observability.ObserveRestriction("geocode", len(results))
	return domain.Place{}, domain.ErrNotFound
}

// typeRank orders suggestions: cities, regions, countries, hotels, everything else.
func typeRank(types []string) int {
	best := 4
	for _, t := range types {
		r := 4
		switch {
		case t == "locality" || t == "postal_town":
			r = 0
		case strings.HasPrefix(t, "administrative_area"):
			r = 1
		case t == "country":
			r = 2
		case t == "lodging":
			r = 3
		}
		if r < best {
			best = r
		}
	}
	return best
}

// RankPredictions sorts in place; ties keep provider order.
func RankPredictions(preds []domain.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		return typeRank(preds[i].Types) < typeRank(preds[j].Types)
	})
}
