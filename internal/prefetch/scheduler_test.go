package prefetch_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hotel_bff/internal/domain"
	"hotel_bff/internal/prefetch"
	"hotel_bff/internal/search"
)

type call struct {
	params search.ResultsQueryParams
	ctx    context.Context
}

// fakeFetcher blocks each call until release is closed (nil release answers at once).
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []call
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, p search.ResultsQueryParams) (*domain.RateSearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{params: p, ctx: ctx})
	rel := f.release
	f.mu.Unlock()
	if rel != nil {
		select {
		case <-rel:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &domain.RateSearchResult{Offers: []domain.HotelOffer{{HotelID: p.PlaceID}}}, nil
}

func (f *fakeFetcher) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func params(placeID, checkin string) search.ResultsQueryParams {
	return search.ResultsQueryParams{
		Mode:        domain.ModePlace,
		PlaceID:     placeID,
		Checkin:     checkin,
		Checkout:    "2026-11-05",
		Occupancies: []domain.Occupancy{{Adults: 2, Children: []int{}}},
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDebounce_SecondLocationUpdateWins(t *testing.T) {
	f := &fakeFetcher{}
	s := prefetch.NewScheduler(f, prefetch.DefaultOptions)
	defer s.Cancel()

	s.Update(params("ChIJfirst", "2026-11-01"), prefetch.TriggerLocation)
	time.Sleep(100 * time.Millisecond)
	s.Update(params("ChIJsecond", "2026-11-01"), prefetch.TriggerLocation)
	if st := s.State(); st != prefetch.Debouncing {
		t.Fatalf("state = %s, want debouncing", st)
	}

	eventually(t, "cached state", func() bool { return s.State() == prefetch.Cached })
	time.Sleep(600 * time.Millisecond) // long enough for a stray first timer

	calls := f.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one network call, got %d", len(calls))
	}
	if calls[0].params.PlaceID != "ChIJsecond" {
		t.Fatalf("call used %s, want the second update's params", calls[0].params.PlaceID)
	}
}

func TestEditTriggerUsesLongerDelay(t *testing.T) {
	f := &fakeFetcher{}
	s := prefetch.NewScheduler(f, prefetch.Options{LocationDelay: 20 * time.Millisecond, EditDelay: 300 * time.Millisecond})
	defer s.Cancel()

	s.Update(params("ChIJa", "2026-11-01"), prefetch.TriggerEdit)
	time.Sleep(100 * time.Millisecond)
	if n := len(f.snapshot()); n != 0 {
		t.Fatalf("edit trigger fired early: %d calls", n)
	}
	eventually(t, "edit fetch", func() bool { return len(f.snapshot()) == 1 })
}

func TestResult_MatchesOnSignatureOnly(t *testing.T) {
	f := &fakeFetcher{}
	s := prefetch.NewScheduler(f, prefetch.Options{LocationDelay: 10 * time.Millisecond, EditDelay: 10 * time.Millisecond})
	defer s.Cancel()

	p := params("ChIJcairo", "2026-11-01")
	s.Update(p, prefetch.TriggerLocation)
	eventually(t, "cached result", func() bool { return s.Result(p) != nil })

	sorted := p
	sorted.Sort = search.SortPriceDesc
	if got := s.Result(sorted); got == nil || got.Offers[0].HotelID != "ChIJcairo" {
		t.Fatalf("sort-only change must still hit the cache, got %+v", got)
	}

	moved := p
	moved.Checkin = "2026-11-02"
	if got := s.Result(moved); got != nil {
		t.Fatalf("checkin change must miss the cache")
	}

	// a cosmetic update does not issue a second request
	s.Update(sorted, prefetch.TriggerEdit)
	time.Sleep(50 * time.Millisecond)
	if n := len(f.snapshot()); n != 1 {
		t.Fatalf("duplicate signature issued a request: %d calls", n)
	}
	if st := s.State(); st != prefetch.Cached {
		t.Fatalf("state = %s, want cached", st)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{})}
	s := prefetch.NewScheduler(f, prefetch.Options{LocationDelay: 10 * time.Millisecond, EditDelay: time.Hour})
	defer s.Cancel()

	first := params("ChIJa", "2026-11-01")
	s.Update(first, prefetch.TriggerLocation)
	eventually(t, "first request", func() bool { return len(f.snapshot()) == 1 })

	// params move on while the request is still out; the new timer has not fired
	s.Update(params("ChIJb", "2026-11-01"), prefetch.TriggerEdit)
	close(f.release)

	time.Sleep(50 * time.Millisecond)
	if s.Result(first) != nil {
		t.Fatalf("result for superseded params must not be cached")
	}
	if st := s.State(); st != prefetch.Debouncing {
		t.Fatalf("state = %s, want debouncing", st)
	}
}

func TestNewFireAbortsInFlight(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{})}
	s := prefetch.NewScheduler(f, prefetch.Options{LocationDelay: 10 * time.Millisecond, EditDelay: 10 * time.Millisecond})
	defer s.Cancel()

	s.Update(params("ChIJa", "2026-11-01"), prefetch.TriggerLocation)
	eventually(t, "first request", func() bool { return len(f.snapshot()) == 1 })
	s.Update(params("ChIJb", "2026-11-01"), prefetch.TriggerLocation)
	eventually(t, "second request", func() bool { return len(f.snapshot()) == 2 })

	calls := f.snapshot()
	if !errors.Is(calls[0].ctx.Err(), context.Canceled) {
		t.Fatalf("first request must be aborted before the second is issued")
	}
	if calls[1].ctx.Err() != nil {
		t.Fatalf("second request must still be live")
	}
	close(f.release)
	eventually(t, "second result", func() bool { return s.Result(params("ChIJb", "2026-11-01")) != nil })
}

func TestCancelStopsTimerAndRequest(t *testing.T) {
	f := &fakeFetcher{release: make(chan struct{})}
	s := prefetch.NewScheduler(f, prefetch.Options{LocationDelay: 10 * time.Millisecond, EditDelay: 50 * time.Millisecond})

	s.Update(params("ChIJa", "2026-11-01"), prefetch.TriggerLocation)
	eventually(t, "request", func() bool { return len(f.snapshot()) == 1 })
	s.Cancel()
	if st := s.State(); st != prefetch.Idle {
		t.Fatalf("state = %s, want idle", st)
	}
	if f.snapshot()[0].ctx.Err() == nil {
		t.Fatalf("in-flight request must be aborted")
	}

	s.Update(params("ChIJb", "2026-11-01"), prefetch.TriggerEdit)
	s.Cancel()
	time.Sleep(100 * time.Millisecond)
	if n := len(f.snapshot()); n != 1 {
		t.Fatalf("cancelled timer still fired: %d calls", n)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rates/search" {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie("hb_identity"); err != nil || c.Value != "tok" {
			t.Errorf("identity cookie not forwarded")
		}
		if r.URL.Query().Get("placeId") == "ChIJbad" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"Place not available","code":"not_found"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(domain.RateSearchResult{Offers: []domain.HotelOffer{{HotelID: r.URL.Query().Get("placeId")}}})
	}))
	defer srv.Close()

	f := &prefetch.HTTPFetcher{BaseURL: srv.URL, Identity: &http.Cookie{Name: "hb_identity", Value: "tok"}}
	res, err := f.Fetch(context.Background(), params("ChIJcairo", "2026-11-01"))
	if err != nil || len(res.Offers) != 1 || res.Offers[0].HotelID != "ChIJcairo" {
		t.Fatalf("fetch: %+v %v", res, err)
	}
	if _, err := f.Fetch(context.Background(), params("ChIJbad", "2026-11-01")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHTTPFetcher_CachedResultServesOtherDisplayFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for _, k := range []string{search.KeyMaxPrice, search.KeySort, search.KeyStars, search.KeyRefundable} {
			if q.Has(k) {
				t.Errorf("display filter %s sent upstream", k)
			}
		}
		// the real handler narrows with the display filters it receives
		full := domain.RateSearchResult{
			Offers: []domain.HotelOffer{
				{HotelID: "cheap", Price: domain.PriceInfo{Amount: 80}},
				{HotelID: "pricey", Price: domain.PriceInfo{Amount: 150}},
			},
			PricesByHotelID: map[string]domain.PriceInfo{"cheap": {Amount: 80}, "pricey": {Amount: 150}},
		}
		_ = json.NewEncoder(w).Encode(search.Parse(q).Apply(full))
	}))
	defer srv.Close()

	s := prefetch.NewScheduler(&prefetch.HTTPFetcher{BaseURL: srv.URL}, prefetch.Options{LocationDelay: 10 * time.Millisecond, EditDelay: 10 * time.Millisecond})
	narrow := params("ChIJcairo", "2026-11-01")
	ceiling := 100.0
	narrow.MaxPrice = &ceiling
	narrow.Sort = search.SortPriceDesc
	s.Update(narrow, prefetch.TriggerLocation)
	eventually(t, "cached", func() bool { return s.State() == prefetch.Cached })

	wide := params("ChIJcairo", "2026-11-01")
	res := s.Result(wide)
	if res == nil || len(res.Offers) != 2 {
		t.Fatalf("cached result must hold every offer, got %+v", res)
	}
	if got := narrow.Apply(*s.Result(narrow)); len(got.Offers) != 1 || got.Offers[0].HotelID != "cheap" {
		t.Fatalf("apply on cached result: %+v", got.Offers)
	}
}
