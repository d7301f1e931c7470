package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_bff/internal/app"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/restrict"
	"hotel_bff/internal/storage/memory"
)

func member(level domain.LoyaltyLevel) *domain.Identity {
	now := time.Now()
	return &domain.Identity{
		Session: domain.Session{SessionID: "s1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		Profile: domain.UserProfile{UserID: "u1", Email: "a@example.com", UserType: domain.UserTypeMember, LoyaltyLevel: level},
	}
}

func newRateService(rates *fakeRates, hotels *app.HotelService) *app.RateService {
	return app.NewRateService(
		rates,
		app.NewKeyRing("b2c-key", "cug-key"),
		app.NewMarginResolver(memory.NewSegmentStore(memory.DefaultSegments), "breadfast.com"),
		hotels,
		restrict.Default("ChIJ-blocked"),
		app.RatesOptions{PublishableKey: "pk_test", ReturnURL: "https://example.com/done"},
	)
}

func placeQuery() domain.RateQuery {
	return domain.RateQuery{
		Mode:        domain.ModePlace,
		PlaceID:     "ChIJcairo",
		Checkin:     "2026-11-01",
		Checkout:    "2026-11-03",
		Occupancies: []domain.Occupancy{{Adults: 2, Children: []int{}}},
	}
}

func room(offer string, amount float64, tag string, taxes bool) domain.RoomType {
	return domain.RoomType{
		OfferID:         offer,
		Name:            "Room " + offer,
		OfferRetailRate: domain.Money{Amount: amount, Currency: "USD"},
		Rates:           []domain.Rate{{Name: "Room " + offer, RefundableTag: tag, TaxesIncluded: taxes}},
	}
}

func primaryAndRefundable(primary, refundable domain.RatesResponse, refErr error) func(domain.RatesRequest) (domain.RatesResponse, error) {
	return func(req domain.RatesRequest) (domain.RatesResponse, error) {
		if req.RefundableOnly {
			return refundable, refErr
		}
		return primary, nil
	}
}

func TestSearch_ValidationFailsBeforeUpstream(t *testing.T) {
	rates := &fakeRates{search: func(domain.RatesRequest) (domain.RatesResponse, error) {
		t.Fatal("upstream must not be called")
		return domain.RatesResponse{}, nil
	}}
	s := newRateService(rates, nil)

	cases := map[string]func(q *domain.RateQuery){
		"mode":            func(q *domain.RateQuery) { q.Mode = "" },
		"place id":        func(q *domain.RateQuery) { q.PlaceID = "" },
		"vibe text":       func(q *domain.RateQuery) { q.Mode = domain.ModeVibe },
		"checkin":         func(q *domain.RateQuery) { q.Checkin = "01/11/2026" },
		"checkout order":  func(q *domain.RateQuery) { q.Checkout = q.Checkin },
		"no rooms":        func(q *domain.RateQuery) { q.Occupancies = nil },
		"no adults":       func(q *domain.RateQuery) { q.Occupancies = []domain.Occupancy{{Adults: 0}} },
		"unset child age": func(q *domain.RateQuery) { q.Occupancies[0].Children = []int{domain.UnsetChildAge} },
		"zero timeout":    func(q *domain.RateQuery) { q.Timeout = ptr(0) },
		"huge timeout":    func(q *domain.RateQuery) { q.Timeout = ptr(1 << 40) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			q := placeQuery()
			mutate(&q)
			_, err := s.Search(context.Background(), q, nil)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSearch_RestrictedInputIsNotFound(t *testing.T) {
	rates := &fakeRates{search: func(domain.RatesRequest) (domain.RatesResponse, error) {
		t.Fatal("upstream must not be called")
		return domain.RatesResponse{}, nil
	}}
	s := newRateService(rates, nil)

	q := placeQuery()
	q.PlaceID = "ChIJ-blocked"
	if _, err := s.Search(context.Background(), q, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("restricted place id: expected not found, got %v", err)
	}

	q = placeQuery()
	q.Mode, q.PlaceID, q.Vibe = domain.ModeVibe, "", "beach hotels in Israel"
	if _, err := s.Search(context.Background(), q, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("restricted vibe: expected not found, got %v", err)
	}
}

func TestSearch_GuestGetsBasePriceAndMergedResult(t *testing.T) {
	primary := domain.RatesResponse{
		Rates: []domain.HotelRates{
			{HotelID: "h1", RoomTypes: []domain.RoomType{room("o1", 250, "NRFN", true), room("o2", 180, "RFN", false)}},
			{HotelID: "h2", RoomTypes: []domain.RoomType{room("o3", 90, "NRFN", true)}},
			{HotelID: "h3", RoomTypes: []domain.RoomType{room("o4", 120, "RFN", true)}},
			{HotelID: "h4"},
		},
		Hotels: []domain.HotelSummary{
			{ID: "h1", Name: "Nile View", Country: "EG", Rating: pfloat(7.5), ReviewCount: ptr(10)},
			{ID: "h2", Name: "Blocked", Country: "il"},
			{ID: "h3", Name: "Harbor", Lat: pfloat(31.2), Lng: pfloat(29.9)},
		},
	}
	refundable := domain.RatesResponse{Rates: []domain.HotelRates{
		{HotelID: "h1", RoomTypes: []domain.RoomType{room("o2", 180, "RFN", false)}},
		{HotelID: "h2", RoomTypes: []domain.RoomType{room("o5", 95, "RFN", true)}},
	}}
	rates := &fakeRates{
		search: primaryAndRefundable(primary, refundable, nil),
		details: func(id string) (domain.HotelDetails, error) {
			switch id {
			case "h1":
				return domain.HotelDetails{ID: id, Rating: pfloat(8.9), ReviewCount: ptr(321), MainPhoto: "h1.jpg"}, nil
			case "h3":
				// details place it inside a restricted box
				return domain.HotelDetails{ID: id, Lat: pfloat(32.08), Lng: pfloat(34.78)}, nil
			}
			return domain.HotelDetails{}, domain.ErrNotFound
		},
	}
	s := newRateService(rates, app.NewHotelService(rates, nil, time.Minute))

	res, err := s.Search(context.Background(), placeQuery(), nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	calls := rates.searchCalls()
	if len(calls) != 2 {
		t.Fatalf("expected primary + refundable calls, got %d", len(calls))
	}
	for i, c := range calls {
		if c.Margin != nil || c.AdditionalMarkup != nil {
			t.Fatalf("guest call %d carried a margin", i)
		}
		if rates.keys[i] != "b2c-key" {
			t.Fatalf("guest must use the b2c key, got %s", rates.keys[i])
		}
		if c.Timeout == nil || *c.Timeout != 15 {
			t.Fatalf("expected default timeout hint, got %v", c.Timeout)
		}
		if c.PlaceID != "ChIJcairo" || c.Currency != "USD" {
			t.Fatalf("unexpected request %+v", c)
		}
	}

	if len(res.Offers) != 1 || res.Offers[0].HotelID != "h1" {
		t.Fatalf("expected only h1 to survive, got %+v", res.Offers)
	}
	price := res.PricesByHotelID["h1"]
	if price.Amount != 180 || price.Currency != "USD" || price.TaxIncluded || price.RefundableTag != "RFN" {
		t.Fatalf("cheapest offer not picked: %+v", price)
	}
	if res.Offers[0].OfferID != "o2" {
		t.Fatalf("expected offer o2, got %s", res.Offers[0].OfferID)
	}
	if !res.HasRefundableRateByHotelID["h1"] || res.HasRefundableRateByHotelID["h2"] {
		t.Fatalf("unexpected refundable map %+v", res.HasRefundableRateByHotelID)
	}
	card := res.HotelDetailsByHotelID["h1"]
	if card.Name != "Nile View" || *card.Rating != 8.9 || *card.ReviewCount != 321 || card.MainPhoto != "h1.jpg" {
		t.Fatalf("enrichment not overlaid: %+v", card)
	}
	if _, ok := res.HotelDetailsByHotelID["h3"]; ok {
		t.Fatalf("hotel in a restricted box must be dropped")
	}
	if res.PromoConfig.IsCug || res.PromoConfig.DisplayDiscountPercent != nil {
		t.Fatalf("guest promo config: %+v", res.PromoConfig)
	}
}

func TestSearch_MemberGetsSegmentMarginAndPromo(t *testing.T) {
	primary := domain.RatesResponse{Rates: []domain.HotelRates{{HotelID: "h1", RoomTypes: []domain.RoomType{room("o1", 100, "RFN", true)}}}}
	rates := &fakeRates{search: primaryAndRefundable(primary, domain.RatesResponse{}, nil)}
	s := newRateService(rates, nil)

	q := placeQuery()
	q.Timeout = ptr(30)
	res, err := s.Search(context.Background(), q, member(domain.LoyaltyVoyager))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for i, c := range rates.searchCalls() {
		if rates.keys[i] != "cug-key" {
			t.Fatalf("member must use the cug key")
		}
		if c.Margin == nil || *c.Margin != 6 {
			t.Fatalf("expected voyager margin 6, got %v", c.Margin)
		}
		if *c.Timeout != 30 {
			t.Fatalf("timeout hint not forwarded: %d", *c.Timeout)
		}
	}
	if !res.PromoConfig.IsCug || res.PromoConfig.DisplayDiscountPercent == nil || *res.PromoConfig.DisplayDiscountPercent != 10 {
		t.Fatalf("unexpected promo config %+v", res.PromoConfig)
	}
}

func TestSearch_RefundableFailureDegrades(t *testing.T) {
	primary := domain.RatesResponse{Rates: []domain.HotelRates{{HotelID: "h1", RoomTypes: []domain.RoomType{room("o1", 100, "RFN", true)}}}}
	rates := &fakeRates{search: primaryAndRefundable(primary, domain.RatesResponse{}, &domain.UpstreamError{Service: "liteapi", Status: 500})}
	s := newRateService(rates, nil)

	res, err := s.Search(context.Background(), placeQuery(), nil)
	if err != nil {
		t.Fatalf("secondary failure must not fail the search: %v", err)
	}
	if len(res.Offers) != 1 || len(res.HasRefundableRateByHotelID) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSearch_PrimaryFailureFails(t *testing.T) {
	rates := &fakeRates{search: func(req domain.RatesRequest) (domain.RatesResponse, error) {
		if req.RefundableOnly {
			return domain.RatesResponse{}, nil
		}
		return domain.RatesResponse{}, domain.ErrUpstreamUnauthorized
	}}
	s := newRateService(rates, nil)
	if _, err := s.Search(context.Background(), placeQuery(), nil); !errors.Is(err, domain.ErrUpstreamUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestSearch_MissingKeyIsConfigurationError(t *testing.T) {
	s := app.NewRateService(&fakeRates{}, app.NewKeyRing("b2c", ""),
		app.NewMarginResolver(memory.NewSegmentStore(nil), ""), nil, restrict.Default(), app.RatesOptions{})
	_, err := s.Search(context.Background(), placeQuery(), member(domain.LoyaltyExplorer))
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) || ce.Secret != "LITEAPI_KEY_CUG" {
		t.Fatalf("expected cug configuration error, got %v", err)
	}
}

func TestHotelRates_AllRoomTypes(t *testing.T) {
	rates := &fakeRates{search: func(req domain.RatesRequest) (domain.RatesResponse, error) {
		if len(req.HotelIDs) != 1 || req.HotelIDs[0] != "h9" {
			t.Fatalf("unexpected hotel ids %v", req.HotelIDs)
		}
		return domain.RatesResponse{Rates: []domain.HotelRates{{HotelID: "h9", RoomTypes: []domain.RoomType{
			room("a", 200, "NRFN", true), room("b", 220, "RFN", true),
		}}}}, nil
	}}
	s := newRateService(rates, nil)

	q := placeQuery()
	q.Mode, q.PlaceID, q.HotelID = "", "", "h9"
	out, err := s.HotelRates(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("hotel rates: %v", err)
	}
	if len(out.RoomTypes) != 2 || !out.HasRefundableRate || out.HotelID != "h9" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestPrebook_PaymentHandoff(t *testing.T) {
	rates := &fakeRates{prebook: func(offerID string) (domain.Prebook, error) {
		return domain.Prebook{PrebookID: "pb1", OfferID: offerID, TransactionID: "tx1", SecretKey: "sk1"}, nil
	}}
	s := newRateService(rates, nil)

	out, err := s.Prebook(context.Background(), "o1", member(domain.LoyaltyExplorer))
	if err != nil {
		t.Fatalf("prebook: %v", err)
	}
	want := domain.PaymentHandoff{PublishableKey: "pk_test", SecretKey: "sk1", TransactionID: "tx1", PrebookID: "pb1", ReturnURL: "https://example.com/done"}
	if out.Payment != want {
		t.Fatalf("handoff = %+v, want %+v", out.Payment, want)
	}
	if rates.keys[0] != "cug-key" {
		t.Fatalf("member prebook must use the cug key")
	}

	if _, err := s.Prebook(context.Background(), " ", nil); err == nil {
		t.Fatalf("expected validation error for empty offer id")
	}
}

func TestBook_Validation(t *testing.T) {
	var got domain.BookRequest
	rates := &fakeRates{book: func(req domain.BookRequest) (domain.Booking, error) {
		got = req
		return domain.Booking{BookingID: "bk1", Status: "CONFIRMED"}, nil
	}}
	s := newRateService(rates, nil)

	_, err := s.Book(context.Background(), domain.BookRequest{PrebookID: "pb1"}, nil)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "transactionId" {
		t.Fatalf("expected transactionId validation error, got %v", err)
	}

	b, err := s.Book(context.Background(), domain.BookRequest{
		PrebookID: "pb1", TransactionID: "tx1",
		Holder: domain.Holder{FirstName: "Mona", LastName: "Adel", Email: "mona@example.com"},
	}, nil)
	if err != nil || b.BookingID != "bk1" {
		t.Fatalf("book: %+v %v", b, err)
	}
	if len(got.Guests) != 1 || got.Guests[0].FirstName != "Mona" {
		t.Fatalf("holder should become the lead guest, got %+v", got.Guests)
	}
}
