// Package restrict decides whether a place, country or coordinate is excluded
// from every search surface. All predicates treat missing data as allowed.
package restrict

import (
	"regexp"
	"strings"

	"hotel_bff/internal/domain"
)

// Box is an inclusive lat/lng rectangle. Boxes are coarse on purpose.
type Box struct {
	Name   string
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

type Set struct {
	countries map[string]struct{}
	placeIDs  map[string]struct{}
	boxes     []Box
	text      *regexp.Regexp
}

// New builds a Set. Country codes are normalised to upper case; names are
// matched as whole words in any script.
func New(countries, placeIDs []string, boxes []Box, names []string) *Set {
	s := &Set{
		countries: make(map[string]struct{}, len(countries)),
		placeIDs:  make(map[string]struct{}, len(placeIDs)),
		boxes:     append([]Box(nil), boxes...),
	}
	for _, c := range countries {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			s.countries[c] = struct{}{}
		}
	}
	for _, id := range placeIDs {
		if id = strings.TrimSpace(id); id != "" {
			s.placeIDs[id] = struct{}{}
		}
	}
	if len(names) > 0 {
		quoted := make([]string, 0, len(names))
		for _, n := range names {
			quoted = append(quoted, regexp.QuoteMeta(n))
		}
		// \b is ASCII-only in RE2, so word edges are spelled out with Unicode classes.
		s.text = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}\p{N}])`)
	}
	return s
}

// Default is the built-in policy, optionally extended with extra place ids.
func Default(extraPlaceIDs ...string) *Set {
	return New(
		[]string{"IL"},
		extraPlaceIDs,
		[]Box{{Name: "IL", MinLat: 29.45, MaxLat: 33.34, MinLng: 34.23, MaxLng: 35.90}},
		[]string{"israel", "israël", "israele", "израиль", "ישראל", "إسرائيل", "اسرائيل"},
	)
}

func (s *Set) IsCountryRestricted(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return false
	}
	_, ok := s.countries[code]
	return ok
}

func (s *Set) IsPlaceIDRestricted(id string) bool {
	if id == "" {
		return false
	}
	_, ok := s.placeIDs[id]
	return ok
}

func (s *Set) IsLocationRestricted(lat, lng float64) bool {
	for _, b := range s.boxes {
		if b.Contains(lat, lng) {
			return true
		}
	}
	return false
}

func (s *Set) IsTextIndicatingRestrictedCountry(text string) bool {
	if s.text == nil || strings.TrimSpace(text) == "" {
		return false
	}
	return s.text.MatchString(text)
}

// Prediction checks what an autocomplete suggestion carries: an id and text.
func (s *Set) Prediction(p domain.Prediction) bool {
	return s.IsPlaceIDRestricted(p.PlaceID) ||
		s.IsTextIndicatingRestrictedCountry(p.Description) ||
		s.IsTextIndicatingRestrictedCountry(p.MainText) ||
		s.IsTextIndicatingRestrictedCountry(p.SecondaryText)
}

// Place checks every signal a resolved place can carry.
func (s *Set) Place(p domain.Place) bool {
	if s.IsPlaceIDRestricted(p.PlaceID) || s.IsCountryRestricted(p.CountryCode()) {
		return true
	}
	if p.Location != nil && s.IsLocationRestricted(p.Location.Lat, p.Location.Lng) {
		return true
	}
	return s.IsTextIndicatingRestrictedCountry(p.Name) ||
		s.IsTextIndicatingRestrictedCountry(p.FormattedAddress)
}

// Hotel checks what a rates response knows about a hotel.
func (s *Set) Hotel(h domain.HotelSummary) bool {
	if s.IsCountryRestricted(h.Country) {
		return true
	}
	return h.Lat != nil && h.Lng != nil && s.IsLocationRestricted(*h.Lat, *h.Lng)
}

// FilterPredictions keeps order and drops restricted suggestions.
func (s *Set) FilterPredictions(in []domain.Prediction) []domain.Prediction {
	out := make([]domain.Prediction, 0, len(in))
	for _, p := range in {
		if !s.Prediction(p) {
			out = append(out, p)
		}
	}
	return out
}
