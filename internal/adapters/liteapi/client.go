// internal/adapters/liteapi/client.go
package liteapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/domain"
)

const service = "liteapi"

type Client struct {
	base     string // data + search endpoints
	bookBase string // prebook + book endpoints
	hc       *http.Client
	rl       *rate.Limiter
}

func New(base, bookBase string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	if bookBase == "" {
		bookBase = base
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		bookBase: strings.TrimRight(bookBase, "/"),
		hc:       &http.Client{Timeout: 45 * time.Second},
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- Public API ----

func (c *Client) SearchRates(ctx context.Context, apiKey string, req domain.RatesRequest) (domain.RatesResponse, error) {
	var out ratesEnvelope
	if err := c.do(ctx, http.MethodPost, c.base+"/hotels/rates", "hotels/rates", apiKey, toRatesBody(req), &out, true); err != nil {
		return domain.RatesResponse{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) HotelDetails(ctx context.Context, apiKey, hotelID string) (domain.HotelDetails, error) {
	u := c.base + "/data/hotel?hotelId=" + url.QueryEscape(hotelID)
	var out struct {
		Data map[string]any `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, u, "data/hotel", apiKey, nil, &out, true); err != nil {
		return domain.HotelDetails{}, err
	}
	if len(out.Data) == 0 {
		return domain.HotelDetails{}, domain.ErrNotFound
	}
	return mapHotelDetails(hotelID, out.Data), nil
}

func (c *Client) Prebook(ctx context.Context, apiKey, offerID string) (domain.Prebook, error) {
	body := map[string]any{"offerId": offerID, "usePaymentSdk": true}
	var out struct {
		Data prebookWire `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, c.bookBase+"/rates/prebook", "rates/prebook", apiKey, body, &out, false); err != nil {
		return domain.Prebook{}, err
	}
	return out.Data.toDomain(), nil
}

func (c *Client) Book(ctx context.Context, apiKey string, req domain.BookRequest) (domain.Booking, error) {
	var out struct {
		Data bookingWire `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, c.bookBase+"/rates/book", "rates/book", apiKey, toBookBody(req), &out, false); err != nil {
		return domain.Booking{}, err
	}
	return out.Data.toDomain(), nil
}

// ---- Internals ----

// do performs one call with client-side rate limiting and JSON decode into out.
// When retry is set, 429 and transient 5xx are retried honoring Retry-After.
func (c *Client) do(ctx context.Context, method, u, endpoint, apiKey string, body, out any, retry bool) error {
	if apiKey == "" {
		return &domain.ConfigurationError{Secret: "LITEAPI_KEY"}
	}
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	attempts := 1
	if retry {
		attempts = 4
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		// build a fresh request each attempt
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-bff/1.0")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if resp.StatusCode == http.StatusNoContent {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				return nil
			}
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return &domain.UpstreamError{Service: service, Status: resp.StatusCode, Message: "malformed response"}
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return domain.ErrUpstreamUnauthorized

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case retry && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusInternalServerError ||
			resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode == http.StatusGatewayTimeout):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			lastErr = upstreamError(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			err := upstreamError(resp)
			resp.Body.Close()
			return err
		}
	}
	return lastErr
}

// upstreamError keeps the provider's message when it sent one.
func upstreamError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	msg := ""
	if json.Unmarshal(b, &env) == nil {
		var nested struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}
		var plain string
		switch {
		case json.Unmarshal(env.Error, &nested) == nil && nested.Message != "":
			msg = nested.Message
		case json.Unmarshal(env.Error, &nested) == nil && nested.Description != "":
			msg = nested.Description
		case json.Unmarshal(env.Error, &plain) == nil && plain != "":
			msg = plain
		default:
			msg = env.Message
		}
	}
	return &domain.UpstreamError{Service: service, Status: resp.StatusCode, Message: strings.TrimSpace(msg)}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff: 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
