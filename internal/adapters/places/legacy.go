package places

import (
	"context"
	"net/http"
	"net/url"

	"hotel_bff/internal/domain"
)

// LegacyClient uses the key-in-query GET endpoints.
type LegacyClient struct {
	base string
	key  string
	hc   *http.Client
	geocoder
}

const legacyDetailFields = "place_id,name,formatted_address,geometry,address_components,types"

func (c *LegacyClient) Autocomplete(ctx context.Context, input, sessionToken string) ([]domain.Prediction, error) {
	if c.key == "" {
		return nil, &domain.ConfigurationError{Secret: "PLACES_API_KEY"}
	}
	q := url.Values{}
	q.Set("input", input)
	q.Set("key", c.key)
	if sessionToken != "" {
		q.Set("sessiontoken", sessionToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/maps/api/place/autocomplete/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Status       string             `json:"status"`
		ErrorMessage string             `json:"error_message"`
		Predictions  []legacyPrediction `json:"predictions"`
	}
	status, body, err := send(c.hc, req, "autocomplete", &out)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, classify(status, body)
	}
	if err := legacyStatus(out.Status, out.ErrorMessage); err != nil {
		return nil, err
	}
	preds := make([]domain.Prediction, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		preds = append(preds, fromLegacyPrediction(p))
	}
	return preds, nil
}

func (c *LegacyClient) Details(ctx context.Context, placeID, sessionToken string) (domain.Place, error) {
	if c.key == "" {
		return domain.Place{}, &domain.ConfigurationError{Secret: "PLACES_API_KEY"}
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", legacyDetailFields)
	q.Set("key", c.key)
	if sessionToken != "" {
		q.Set("sessiontoken", sessionToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/maps/api/place/details/json?"+q.Encode(), nil)
	if err != nil {
		return domain.Place{}, err
	}
	var out struct {
		Status       string      `json:"status"`
		ErrorMessage string      `json:"error_message"`
		Result       legacyPlace `json:"result"`
	}
	status, body, err := send(c.hc, req, "details", &out)
	if err != nil {
		return domain.Place{}, err
	}
	if status/100 != 2 {
		return domain.Place{}, classify(status, body)
	}
	if err := legacyStatus(out.Status, out.ErrorMessage); err != nil {
		return domain.Place{}, err
	}
	if out.Status == "ZERO_RESULTS" || out.Result.PlaceID == "" {
		return domain.Place{}, domain.ErrNotFound
	}
	return fromLegacyPlace(out.Result), nil
}
