package domain

import "context"

// RatesClient talks to the hotel-rates provider. The API key is chosen per
// request because it depends on the caller's channel.
type RatesClient interface {
	SearchRates(ctx context.Context, apiKey string, req RatesRequest) (RatesResponse, error)
	HotelDetails(ctx context.Context, apiKey, hotelID string) (HotelDetails, error)
	Prebook(ctx context.Context, apiKey, offerID string) (Prebook, error)
	Book(ctx context.Context, apiKey string, req BookRequest) (Booking, error)
}

// PlacesClient hides which provider API generation is in use.
type PlacesClient interface {
	Autocomplete(ctx context.Context, input, sessionToken string) ([]Prediction, error)
	Details(ctx context.Context, placeID, sessionToken string) (Place, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) ([]Place, error)
}

type SegmentStore interface {
	// Segment returns ErrNotFound when no row exists for id.
	Segment(ctx context.Context, id string) (SegmentRow, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
