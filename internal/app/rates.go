package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/restrict"
)

const (
	dateLayout = "2006-01-02"
	maxTimeout = 120 // seconds
)

type RatesOptions struct {
	DefaultTimeout   time.Duration // forwarded upstream as the search timeout hint
	Currency         string
	GuestNationality string
	PublishableKey   string
	ReturnURL        string
}

type RateService struct {
	rates    domain.RatesClient
	keys     *KeyRing
	margins  *MarginResolver
	hotels   *HotelService
	restrict *restrict.Set
	opts     RatesOptions
	now      func() time.Time
}

func NewRateService(rc domain.RatesClient, keys *KeyRing, m *MarginResolver, h *HotelService, r *restrict.Set, opts RatesOptions) *RateService {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 15 * time.Second
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.GuestNationality == "" {
		opts.GuestNationality = "US"
	}
	return &RateService{rates: rc, keys: keys, margins: m, hotels: h, restrict: r, opts: opts, now: time.Now}
}

// pricing is what every rates call needs from the caller's identity.
type pricing struct {
	channel domain.Channel
	apiKey  string
	margin  domain.MarginResult
}

func (s *RateService) pricingFor(ctx context.Context, id *domain.Identity) (pricing, error) {
	ch := ChannelFromIdentity(id, s.now())
	key, err := s.keys.APIKey(ch)
	if err != nil {
		return pricing{}, err
	}
	var profile *domain.UserProfile
	if ch == domain.ChannelCUG {
		profile = &id.Profile
	}
	m, err := s.margins.ResolveMargin(ctx, profile, ch)
	if err != nil {
		return pricing{}, err
	}
	return pricing{channel: ch, apiKey: key, margin: m}, nil
}

func validateStay(q domain.RateQuery) error {
	in, err := time.Parse(dateLayout, q.Checkin)
	if err != nil {
		return domain.Invalid("checkin", "must be YYYY-MM-DD")
	}
	out, err := time.Parse(dateLayout, q.Checkout)
	if err != nil {
		return domain.Invalid("checkout", "must be YYYY-MM-DD")
	}
	if !out.After(in) {
		return domain.Invalid("checkout", "must be after checkin")
	}
	if q.Timeout != nil && (*q.Timeout < 1 || *q.Timeout > maxTimeout) {
		return domain.Invalid("timeout", "must be between 1 and %d seconds", maxTimeout)
	}
	return domain.ValidateOccupancies(q.Occupancies)
}

func validateSearch(q domain.RateQuery) error {
	switch q.Mode {
	case domain.ModePlace:
		if strings.TrimSpace(q.PlaceID) == "" {
			return domain.Invalid("placeId", "is required in place mode")
		}
	case domain.ModeVibe:
		if strings.TrimSpace(q.Vibe) == "" {
			return domain.Invalid("vibe", "is required in vibe mode")
		}
	default:
		return domain.Invalid("mode", "must be place or vibe")
	}
	if q.Radius != nil && *q.Radius <= 0 {
		return domain.Invalid("radius", "must be positive")
	}
	return validateStay(q)
}

// guard rejects queries aimed at restricted content before any upstream call.
func (s *RateService) guard(q domain.RateQuery) error {
	blocked := s.restrict.IsPlaceIDRestricted(q.PlaceID) ||
		s.restrict.IsTextIndicatingRestrictedCountry(q.Vibe) ||
		(q.Lat != nil && q.Lng != nil && s.restrict.IsLocationRestricted(*q.Lat, *q.Lng))
	if blocked {
		observability.ObserveRestriction("search", 1)
		return domain.ErrNotFound
	}
	return nil
}

func (s *RateService) timeout(q domain.RateQuery) (hint int, deadline time.Duration) {
	hint = int(s.opts.DefaultTimeout / time.Second)
	if q.Timeout != nil {
		hint = *q.Timeout
	}
	// grace for the provider to answer after its own timeout
	return hint, time.Duration(hint)*time.Second + 5*time.Second
}

func (s *RateService) baseRequest(q domain.RateQuery, p pricing, hint int) domain.RatesRequest {
	req := domain.RatesRequest{
		Occupancies:      q.Occupancies,
		Currency:         q.Currency,
		GuestNationality: q.GuestNationality,
		Checkin:          q.Checkin,
		Checkout:         q.Checkout,
		Timeout:          &hint,
		Margin:           p.margin.Margin,
		AdditionalMarkup: p.margin.AdditionalMarkup,
	}
	if req.Currency == "" {
		req.Currency = s.opts.Currency
	}
	if req.GuestNationality == "" {
		req.GuestNationality = s.opts.GuestNationality
	}
	return req
}

// Search runs the primary and the refundable-only searches side by side and
// merges them into one result. Only the primary search is required.
func (s *RateService) Search(ctx context.Context, q domain.RateQuery, id *domain.Identity) (domain.RateSearchResult, error) {
	if err := validateSearch(q); err != nil {
		return domain.RateSearchResult{}, err
	}
	if err := s.guard(q); err != nil {
		return domain.RateSearchResult{}, err
	}
	p, err := s.pricingFor(ctx, id)
	if err != nil {
		return domain.RateSearchResult{}, err
	}

	hint, deadline := s.timeout(q)
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req := s.baseRequest(q, p, hint)
	switch q.Mode {
	case domain.ModePlace:
		req.PlaceID = q.PlaceID
		req.Lat, req.Lng, req.Radius = q.Lat, q.Lng, q.Radius
	case domain.ModeVibe:
		req.AIQuery = q.Vibe
	}
	req.IncludeHotelData = true
	refReq := req
	refReq.RefundableOnly = true
	refReq.IncludeHotelData = false

	var primary, refundable domain.RatesResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = s.rates.SearchRates(gctx, p.apiKey, req)
		return err
	})
	g.Go(func() error {
		r, err := s.rates.SearchRates(gctx, p.apiKey, refReq)
		if err != nil {
			log.Warn().Err(err).Str("mode", string(q.Mode)).Msg("refundable search failed, continuing without refundable flags")
			return nil
		}
		refundable = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.RateSearchResult{}, err
	}

	res := s.merge(primary, refundable)
	s.enrich(ctx, p.apiKey, &res)
	res.PromoConfig = PromoFor(p.channel, p.margin)
	return res, nil
}

func (s *RateService) merge(primary, refundable domain.RatesResponse) domain.RateSearchResult {
	res := domain.RateSearchResult{
		Offers:                     make([]domain.HotelOffer, 0, len(primary.Rates)),
		PricesByHotelID:            make(map[string]domain.PriceInfo, len(primary.Rates)),
		HasRefundableRateByHotelID: map[string]bool{},
		HotelDetailsByHotelID:      map[string]domain.HotelCard{},
	}
	summaries := make(map[string]domain.HotelSummary, len(primary.Hotels))
	for _, h := range primary.Hotels {
		summaries[h.ID] = h
	}

	dropped := 0
	for _, hr := range primary.Rates {
		sum, known := summaries[hr.HotelID]
		if known && s.restrict.Hotel(sum) {
			dropped++
			continue
		}
		rt, ok := cheapest(hr.RoomTypes)
		if !ok {
			continue
		}
		price := priceOf(rt)
		res.Offers = append(res.Offers, domain.HotelOffer{HotelID: hr.HotelID, OfferID: rt.OfferID, Name: rt.Name, Price: price})
		res.PricesByHotelID[hr.HotelID] = price
		if known {
			res.HotelDetailsByHotelID[hr.HotelID] = domain.HotelCard{
				Name:        sum.Name,
				Rating:      sum.Rating,
				ReviewCount: sum.ReviewCount,
				Stars:       sum.Stars,
				MainPhoto:   sum.MainPhoto,
				Address:     sum.Address,
			}
		}
	}
	observability.ObserveRestriction("results", dropped)

	for _, hr := range refundable.Rates {
		if _, ok := res.PricesByHotelID[hr.HotelID]; ok && len(hr.RoomTypes) > 0 {
			res.HasRefundableRateByHotelID[hr.HotelID] = true
		}
	}
	return res
}

// cheapest picks the room type with the lowest offer retail amount.
func cheapest(rts []domain.RoomType) (domain.RoomType, bool) {
	if len(rts) == 0 {
		return domain.RoomType{}, false
	}
	best := rts[0]
	for _, rt := range rts[1:] {
		if rt.OfferRetailRate.Amount < best.OfferRetailRate.Amount {
			best = rt
		}
	}
	return best, true
}

func priceOf(rt domain.RoomType) domain.PriceInfo {
	p := domain.PriceInfo{
		Amount:      rt.OfferRetailRate.Amount,
		Currency:    rt.OfferRetailRate.Currency,
		TaxIncluded: true,
	}
	if len(rt.Rates) > 0 {
		r := rt.Rates[0]
		p.TaxIncluded = r.TaxesIncluded
		p.RefundableTag = r.RefundableTag
		if p.Currency == "" {
			p.Currency = r.RetailTotal.Currency
		}
		if p.Amount == 0 {
			p.Amount = r.RetailTotal.Amount
		}
	}
	return p
}

// enrich overlays rating data from hotel details. Details that reveal a
// restricted location remove the hotel from the result. Failures only cost
// the enrichment.
func (s *RateService) enrich(ctx context.Context, apiKey string, res *domain.RateSearchResult) {
	if s.hotels == nil || len(res.Offers) == 0 {
		return
	}
	ids := make([]string, 0, len(res.Offers))
	for _, o := range res.Offers {
		ids = append(ids, o.HotelID)
	}
	batch, err := s.hotels.Batch(ctx, apiKey, ids)
	if err != nil {
		log.Warn().Err(err).Int("hotels", len(ids)).Msg("hotel enrichment failed")
		return
	}

	dropped := map[string]bool{}
	for id, d := range batch.ByID {
		sum := domain.HotelSummary{ID: id, Country: d.Country, Lat: d.Lat, Lng: d.Lng}
		if s.restrict.Hotel(sum) {
			dropped[id] = true
			continue
		}
		card := res.HotelDetailsByHotelID[id]
		if d.Rating != nil {
			card.Rating = d.Rating
		}
		if d.ReviewCount != nil {
			card.ReviewCount = d.ReviewCount
		}
		if card.Name == "" {
			card.Name = d.Name
		}
		if card.Stars == nil {
			card.Stars = d.Stars
		}
		if card.MainPhoto == "" {
			card.MainPhoto = d.MainPhoto
		}
		if card.Address == "" {
			card.Address = d.Address
		}
		res.HotelDetailsByHotelID[id] = card
	}
	if len(dropped) == 0 {
		return
	}
	observability.ObserveRestriction("results", len(dropped))
	kept := res.Offers[:0]
	for _, o := range res.Offers {
		if dropped[o.HotelID] {
			delete(res.PricesByHotelID, o.HotelID)
			delete(res.HasRefundableRateByHotelID, o.HotelID)
			delete(res.HotelDetailsByHotelID, o.HotelID)
			continue
		}
		kept = append(kept, o)
	}
	res.Offers = kept
}

// HotelRates returns every room type of one hotel.
func (s *RateService) HotelRates(ctx context.Context, q domain.RateQuery, id *domain.Identity) (domain.HotelRatesResult, error) {
	q.HotelID = strings.TrimSpace(q.HotelID)
	if q.HotelID == "" {
		return domain.HotelRatesResult{}, domain.Invalid("hotelId", "is required")
	}
	if err := validateStay(q); err != nil {
		return domain.HotelRatesResult{}, err
	}
	p, err := s.pricingFor(ctx, id)
	if err != nil {
		return domain.HotelRatesResult{}, err
	}

	hint, deadline := s.timeout(q)
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req := s.baseRequest(q, p, hint)
	req.HotelIDs = []string{q.HotelID}
	req.IncludeHotelData = true
	resp, err := s.rates.SearchRates(ctx, p.apiKey, req)
	if err != nil {
		return domain.HotelRatesResult{}, err
	}
	for _, h := range resp.Hotels {
		if h.ID == q.HotelID && s.restrict.Hotel(h) {
			observability.ObserveRestriction("results", 1)
			return domain.HotelRatesResult{}, domain.ErrNotFound
		}
	}

	out := domain.HotelRatesResult{HotelID: q.HotelID, RoomTypes: []domain.RoomType{}, PromoConfig: PromoFor(p.channel, p.margin)}
	for _, hr := range resp.Rates {
		if hr.HotelID != q.HotelID {
			continue
		}
		out.RoomTypes = hr.RoomTypes
		for _, rt := range hr.RoomTypes {
			for _, r := range rt.Rates {
				if r.RefundableTag == "RFN" {
					out.HasRefundableRate = true
				}
			}
		}
	}
	return out, nil
}

// Prebook locks the offer and returns what the payment widget needs.
func (s *RateService) Prebook(ctx context.Context, offerID string, id *domain.Identity) (domain.PrebookResult, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return domain.PrebookResult{}, domain.Invalid("offerId", "is required")
	}
	if s.opts.PublishableKey == "" {
		return domain.PrebookResult{}, &domain.ConfigurationError{Secret: "PAYMENT_PUBLISHABLE_KEY"}
	}
	key, err := s.keys.APIKey(ChannelFromIdentity(id, s.now()))
	if err != nil {
		return domain.PrebookResult{}, err
	}
	pb, err := s.rates.Prebook(ctx, key, offerID)
	if err != nil {
		return domain.PrebookResult{}, err
	}
	return domain.PrebookResult{
		Prebook: pb,
		Payment: domain.PaymentHandoff{
			PublishableKey: s.opts.PublishableKey,
			SecretKey:      pb.SecretKey,
			TransactionID:  pb.TransactionID,
			PrebookID:      pb.PrebookID,
			ReturnURL:      s.opts.ReturnURL,
		},
	}, nil
}

// Book confirms a prebooked offer once payment has completed.
func (s *RateService) Book(ctx context.Context, req domain.BookRequest, id *domain.Identity) (domain.Booking, error) {
	switch {
	case strings.TrimSpace(req.PrebookID) == "":
		return domain.Booking{}, domain.Invalid("prebookId", "is required")
	case strings.TrimSpace(req.TransactionID) == "":
		return domain.Booking{}, domain.Invalid("transactionId", "is required")
	case strings.TrimSpace(req.Holder.FirstName) == "" || strings.TrimSpace(req.Holder.LastName) == "":
		return domain.Booking{}, domain.Invalid("holder", "first and last name are required")
	case !strings.Contains(req.Holder.Email, "@"):
		return domain.Booking{}, domain.Invalid("holder.email", "is invalid")
	}
	if len(req.Guests) == 0 {
		req.Guests = []domain.Guest{{
			OccupancyNumber: 1,
			FirstName:       req.Holder.FirstName,
			LastName:        req.Holder.LastName,
			Email:           req.Holder.Email,
		}}
	}
	key, err := s.keys.APIKey(ChannelFromIdentity(id, s.now()))
	if err != nil {
		return domain.Booking{}, err
	}
	return s.rates.Book(ctx, key, req)
}
