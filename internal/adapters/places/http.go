// Package places talks to the places/geocoding provider. Two API generations
// are supported; both are normalised to domain.Prediction and domain.Place.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/domain"
)

const service = "places"

// New picks the client for the configured API generation.
func New(legacyBase, newBase, key string, useNew bool) domain.PlacesClient {
	g := geocoder{base: strings.TrimRight(legacyBase, "/"), key: key, hc: defaultHTTP()}
	if useNew {
		return &NewClient{base: strings.TrimRight(newBase, "/"), key: key, hc: g.hc, geocoder: g}
	}
	return &LegacyClient{base: g.base, key: key, hc: g.hc, geocoder: g}
}

func defaultHTTP() *http.Client { return &http.Client{Timeout: 10 * time.Second} }

// send executes req, records metrics and decodes a 2xx body into out.
// Non-2xx responses come back as (status, body) for the caller to classify.
func send(hc *http.Client, req *http.Request, endpoint string, out any) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		return 0, nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, b, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, nil, &domain.UpstreamError{Service: service, Status: resp.StatusCode, Message: "malformed response"}
	}
	return resp.StatusCode, nil, nil
}

// classify maps a non-2xx response to the error taxonomy.
func classify(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUpstreamUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		ErrorMessage string `json:"error_message"`
	}
	_ = json.Unmarshal(body, &env)
	msg := env.Error.Message
	if msg == "" {
		msg = env.ErrorMessage
	}
	return &domain.UpstreamError{Service: service, Status: status, Message: msg}
}

// legacyStatus maps the in-body status of the key-based endpoints.
func legacyStatus(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "REQUEST_DENIED":
		return domain.ErrUpstreamUnauthorized
	case "NOT_FOUND", "INVALID_REQUEST":
		return domain.ErrNotFound
	default:
		return &domain.UpstreamError{Service: service, Status: http.StatusOK, Message: strings.TrimSpace(status + " " + message)}
	}
}

// geocoder serves reverse geocoding for both generations.
type geocoder struct {
	base string
	key  string
	hc   *http.Client
}

func (g geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) ([]domain.Place, error) {
	if g.key == "" {
		return nil, &domain.ConfigurationError{Secret: "PLACES_API_KEY"}
	}
	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("key", g.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/maps/api/geocode/json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Status       string        `json:"status"`
		ErrorMessage string        `json:"error_message"`
		Results      []legacyPlace `json:"results"`
	}
	status, body, err := send(g.hc, req, "geocode", &out)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, classify(status, body)
	}
	if err := legacyStatus(out.Status, out.ErrorMessage); err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	places := make([]domain.Place, 0, len(out.Results))
	for _, r := range out.Results {
		places = append(places, fromLegacyPlace(r))
	}
	return places, nil
}
