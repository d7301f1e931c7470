package places

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"hotel_bff/internal/domain"
)

// NewClient uses the POST/JSON endpoint family with header auth and field masks.
type NewClient struct {
	base string
	key  string
	hc   *http.Client
	geocoder
}

const (
	autocompleteFieldMask = "suggestions.placePrediction.placeId,suggestions.placePrediction.text," +
		"suggestions.placePrediction.structuredFormat,suggestions.placePrediction.types"
	detailsFieldMask = "id,displayName,formattedAddress,location,viewport,addressComponents,types"
)

func (c *NewClient) headers(req *http.Request, mask string) {
	req.Header.Set("X-Goog-Api-Key", c.key)
	req.Header.Set("X-Goog-FieldMask", mask)
}

func (c *NewClient) Autocomplete(ctx context.Context, input, sessionToken string) ([]domain.Prediction, error) {
	if c.key == "" {
		return nil, &domain.ConfigurationError{Secret: "PLACES_API_KEY"}
	}
	payload, err := json.Marshal(map[string]string{"input": input, "sessionToken": sessionToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/places:autocomplete", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.headers(req, autocompleteFieldMask)

	var out struct {
		Suggestions []newSuggestion `json:"suggestions"`
	}
	status, body, err := send(c.hc, req, "autocomplete", &out)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, classify(status, body)
	}
	preds := make([]domain.Prediction, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		if s.PlacePrediction == nil {
			continue // query predictions carry no place
		}
		preds = append(preds, fromNewPrediction(*s.PlacePrediction))
	}
	return preds, nil
}

func (c *NewClient) Details(ctx context.Context, placeID, sessionToken string) (domain.Place, error) {
	if c.key == "" {
		return domain.Place{}, &domain.ConfigurationError{Secret: "PLACES_API_KEY"}
	}
	u := c.base + "/v1/places/" + url.PathEscape(placeID)
	if sessionToken != "" {
		u += "?sessionToken=" + url.QueryEscape(sessionToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Place{}, err
	}
	c.headers(req, detailsFieldMask)

	var out newPlace
	status, body, err := send(c.hc, req, "details", &out)
	if err != nil {
		return domain.Place{}, err
	}
	if status/100 != 2 {
		return domain.Place{}, classify(status, body)
	}
	if out.ID == "" {
		return domain.Place{}, domain.ErrNotFound
	}
	return fromNewPlace(out), nil
}
