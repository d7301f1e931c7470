package prefetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"hotel_bff/internal/domain"
	"hotel_bff/internal/search"
)

// HTTPFetcher calls this service's GET /api/rates/search.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
	// Identity is sent along so members get member pricing.
	Identity *http.Cookie
}

func (f *HTTPFetcher) Fetch(ctx context.Context, p search.ResultsQueryParams) (*domain.RateSearchResult, error) {
	hc := f.Client
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	// display filters stay out so the cached result serves any of them
	u := strings.TrimRight(f.BaseURL, "/") + "/api/rates/search?" + p.Major().Encode().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.Identity != nil {
		req.AddCookie(f.Identity)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var env struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		_ = json.Unmarshal(b, &env)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, domain.ErrNotFound
		case http.StatusBadRequest:
			return nil, &domain.ValidationError{Msg: env.Error.Message}
		}
		return nil, &domain.UpstreamError{Service: "bff", Status: resp.StatusCode, Message: env.Error.Message}
	}
	var out domain.RateSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
