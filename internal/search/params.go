// Package search holds the canonical results-page state. It lives only in the
// URL query string; both the server and the prefetch client derive it by parsing.
package search

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"hotel_bff/internal/domain"
)

// Query keys.
const (
	KeyMode       = "mode"
	KeyPlaceID    = "placeId"
	KeyPlaceName  = "placeName"
	KeyVibe       = "vibe"
	KeyCheckin    = "checkin"
	KeyCheckout   = "checkout"
	KeyOcc        = "occ"
	KeyMinPrice   = "minPrice"
	KeyMaxPrice   = "maxPrice"
	KeyStars      = "stars"
	KeyRefundable = "refundable"
	KeySort       = "sort"
	KeyLat        = "lat"
	KeyLng        = "lng"
	KeyRadius     = "radius"
	KeyBounds     = "bounds"
)

type Sort string

const (
	SortRecommended Sort = ""
	SortPriceAsc    Sort = "price_asc"
	SortPriceDesc   Sort = "price_desc"
	SortRating      Sort = "rating"
)

// Bounds is the map viewport, serialised as "south,west,north,east".
type Bounds struct {
	South, West, North, East float64
}

type ResultsQueryParams struct {
	Mode           domain.SearchMode
	PlaceID        string
	PlaceName      string
	Vibe           string
	Checkin        string
	Checkout       string
	Occupancies    []domain.Occupancy
	MinPrice       *float64
	MaxPrice       *float64
	Stars          []int
	RefundableOnly *bool
	Sort           Sort
	Lat            *float64
	Lng            *float64
	Radius         *float64
	Bounds         *Bounds
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseFloat(v url.Values, k string) *float64 {
	s := strings.TrimSpace(v.Get(k))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Parse never fails: malformed values are treated as unset.
func Parse(v url.Values) ResultsQueryParams {
	p := ResultsQueryParams{
		Mode:      domain.SearchMode(strings.TrimSpace(v.Get(KeyMode))),
		PlaceID:   strings.TrimSpace(v.Get(KeyPlaceID)),
		PlaceName: v.Get(KeyPlaceName),
		Vibe:      v.Get(KeyVibe),
		Checkin:   strings.TrimSpace(v.Get(KeyCheckin)),
		Checkout:  strings.TrimSpace(v.Get(KeyCheckout)),
		MinPrice:  parseFloat(v, KeyMinPrice),
		MaxPrice:  parseFloat(v, KeyMaxPrice),
		Sort:      Sort(strings.TrimSpace(v.Get(KeySort))),
		Lat:       parseFloat(v, KeyLat),
		Lng:       parseFloat(v, KeyLng),
		Radius:    parseFloat(v, KeyRadius),
	}
	if occ := strings.TrimSpace(v.Get(KeyOcc)); occ != "" {
		p.Occupancies = domain.ParseOccupancies(occ)
	}
	if s := strings.TrimSpace(v.Get(KeyStars)); s != "" {
		for _, part := range strings.Split(s, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n >= 1 && n <= 5 {
				p.Stars = append(p.Stars, n)
			}
		}
	}
	if s := strings.TrimSpace(v.Get(KeyRefundable)); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			p.RefundableOnly = &b
		}
	}
	if s := strings.TrimSpace(v.Get(KeyBounds)); s != "" {
		parts := strings.Split(s, ",")
		if len(parts) == 4 {
			var f [4]float64
			ok := true
			for i, part := range parts {
				x, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
				if err != nil {
					ok = false
					break
				}
				f[i] = x
			}
			if ok {
				p.Bounds = &Bounds{South: f[0], West: f[1], North: f[2], East: f[3]}
			}
		}
	}
	return p
}

// Encode emits only the fields that are set.
func (p ResultsQueryParams) Encode() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	setF := func(k string, f *float64) {
		if f != nil {
			v.Set(k, formatFloat(*f))
		}
	}
	set(KeyMode, string(p.Mode))
	set(KeyPlaceID, p.PlaceID)
	set(KeyPlaceName, p.PlaceName)
	set(KeyVibe, p.Vibe)
	set(KeyCheckin, p.Checkin)
	set(KeyCheckout, p.Checkout)
	set(KeyOcc, domain.FormatOccupancies(p.Occupancies))
	setF(KeyMinPrice, p.MinPrice)
	setF(KeyMaxPrice, p.MaxPrice)
	if len(p.Stars) > 0 {
		parts := make([]string, len(p.Stars))
		for i, s := range p.Stars {
			parts[i] = strconv.Itoa(s)
		}
		v.Set(KeyStars, strings.Join(parts, ","))
	}
	if p.RefundableOnly != nil {
		v.Set(KeyRefundable, strconv.FormatBool(*p.RefundableOnly))
	}
	set(KeySort, string(p.Sort))
	setF(KeyLat, p.Lat)
	setF(KeyLng, p.Lng)
	setF(KeyRadius, p.Radius)
	if b := p.Bounds; b != nil {
		v.Set(KeyBounds, strings.Join([]string{formatFloat(b.South), formatFloat(b.West), formatFloat(b.North), formatFloat(b.East)}, ","))
	}
	return v
}

// Major keeps only the params that change what the provider returns.
// Sort and display filters are dropped.
func (p ResultsQueryParams) Major() ResultsQueryParams {
	return ResultsQueryParams{
		Mode:        p.Mode,
		PlaceID:     p.PlaceID,
		Vibe:        strings.TrimSpace(p.Vibe),
		Checkin:     p.Checkin,
		Checkout:    p.Checkout,
		Occupancies: p.Occupancies,
		Lat:         p.Lat,
		Lng:         p.Lng,
		Radius:      p.Radius,
	}
}

// Signature identifies the major params. It is query-escaped, so free text
// cannot collide with the occupancy separator.
func (p ResultsQueryParams) Signature() string {
	return p.Major().Encode().Encode()
}

func (p ResultsQueryParams) RateQuery() domain.RateQuery {
	return domain.RateQuery{
		Mode:        p.Mode,
		PlaceID:     p.PlaceID,
		Vibe:        p.Vibe,
		Checkin:     p.Checkin,
		Checkout:    p.Checkout,
		Occupancies: p.Occupancies,
		Lat:         p.Lat,
		Lng:         p.Lng,
		Radius:      p.Radius,
	}
}

// Apply narrows and orders a search result by the display filters.
// Maps are pruned to the offers that remain.
func (p ResultsQueryParams) Apply(res domain.RateSearchResult) domain.RateSearchResult {
	stars := map[int]bool{}
	for _, s := range p.Stars {
		stars[s] = true
	}
	kept := make([]domain.HotelOffer, 0, len(res.Offers))
	for _, o := range res.Offers {
		if p.MinPrice != nil && o.Price.Amount < *p.MinPrice {
			continue
		}
		if p.MaxPrice != nil && o.Price.Amount > *p.MaxPrice {
			continue
		}
		if p.RefundableOnly != nil && *p.RefundableOnly && !res.HasRefundableRateByHotelID[o.HotelID] {
			continue
		}
		if len(stars) > 0 {
			card := res.HotelDetailsByHotelID[o.HotelID]
			if card.Stars == nil || !stars[int(*card.Stars)] {
				continue
			}
		}
		kept = append(kept, o)
	}

	rating := func(id string) float64 {
		if r := res.HotelDetailsByHotelID[id].Rating; r != nil {
			return *r
		}
		return -1
	}
	switch p.Sort {
	case SortPriceAsc:
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Price.Amount < kept[j].Price.Amount })
	case SortPriceDesc:
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Price.Amount > kept[j].Price.Amount })
	case SortRating:
		sort.SliceStable(kept, func(i, j int) bool { return rating(kept[i].HotelID) > rating(kept[j].HotelID) })
	}

	out := domain.RateSearchResult{
		Offers:                     kept,
		PricesByHotelID:            make(map[string]domain.PriceInfo, len(kept)),
		HasRefundableRateByHotelID: map[string]bool{},
		HotelDetailsByHotelID:      make(map[string]domain.HotelCard, len(kept)),
		PromoConfig:                res.PromoConfig,
	}
	for _, o := range kept {
		if pr, ok := res.PricesByHotelID[o.HotelID]; ok {
			out.PricesByHotelID[o.HotelID] = pr
		}
		if res.HasRefundableRateByHotelID[o.HotelID] {
			out.HasRefundableRateByHotelID[o.HotelID] = true
		}
		if c, ok := res.HotelDetailsByHotelID[o.HotelID]; ok {
			out.HotelDetailsByHotelID[o.HotelID] = c
		}
	}
	return out
}
