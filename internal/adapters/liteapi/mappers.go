package liteapi

import (
	"strconv"
	"strings"

	"hotel_bff/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":          {"id", "hotelId", "hotel_id"},
	"name":        {"name", "hotelName"},
	"description": {"hotelDescription", "description", "markdown_description"},
	"address":     {"address", "address.line", "formatted_address"},
	"city":        {"city", "address.city"},
	"country":     {"country", "countryCode", "country_code", "address.country"},
	"photo":       {"main_photo", "mainPhoto", "thumbnail"},
	"checkin":     {"checkinCheckoutTimes.checkin", "checkinCheckoutTimes.checkin_start", "checkin"},
	"checkout":    {"checkinCheckoutTimes.checkout", "checkout"},
}

var (
	latPaths     = []string{"location.latitude", "latitude", "lat"}
	lngPaths     = []string{"location.longitude", "longitude", "lng", "lon"}
	ratingPaths  = []string{"rating", "guestRating", "reviewScore", "review_score"}
	reviewPaths  = []string{"reviewCount", "review_count", "reviewsCount", "numberOfReviews"}
	starsPaths   = []string{"starRating", "stars", "star_rating"}
	imagePaths   = []string{"hotelImages", "images", "photos"}
	facilityPath = []string{"hotelFacilities", "facilities", "amenities"}
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, key string) string {
	for _, p := range hotelAliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getIntFlexible(m map[string]any, paths ...string) *int {
	if f := getFloatFlexible(m, paths...); f != nil {
		n := int(*f)
		return &n
	}
	return nil
}

// idString accepts ids that arrive as strings or numbers.
func idString(m map[string]any) string {
	if s := firstAlias(m, "id"); s != "" {
		return s
	}
	for _, p := range hotelAliases["id"] {
		if f, ok := lookupAny(m, p).(float64); ok {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return ""
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					for _, key := range []string{"url", "urlHd", "src", "name", "facility"} {
						if u, ok := t[key].(string); ok && u != "" {
							out = append(out, u)
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** hotel mappers **********/

func mapHotelDetails(requestedID string, p map[string]any) domain.HotelDetails {
	id := idString(p)
	if id == "" {
		id = requestedID
	}
	h := domain.HotelDetails{
		ID:           id,
		Name:         firstAlias(p, "name"),
		Description:  firstAlias(p, "description"),
		Address:      firstAlias(p, "address"),
		City:         firstAlias(p, "city"),
		Country:      strings.ToUpper(firstAlias(p, "country")),
		Lat:          getFloatFlexible(p, latPaths...),
		Lng:          getFloatFlexible(p, lngPaths...),
		Stars:        getFloatFlexible(p, starsPaths...),
		Rating:       getFloatFlexible(p, ratingPaths...),
		ReviewCount:  getIntFlexible(p, reviewPaths...),
		MainPhoto:    firstAlias(p, "photo"),
		Images:       firstSliceStrings(p, imagePaths...),
		Facilities:   firstSliceStrings(p, facilityPath...),
		CheckinTime:  firstAlias(p, "checkin"),
		CheckoutTime: firstAlias(p, "checkout"),
	}
	if h.MainPhoto == "" && len(h.Images) > 0 {
		h.MainPhoto = h.Images[0]
	}
	return h
}

func mapHotelSummary(p map[string]any) domain.HotelSummary {
	return domain.HotelSummary{
		ID:          idString(p),
		Name:        firstAlias(p, "name"),
		Country:     strings.ToUpper(firstAlias(p, "country")),
		Lat:         getFloatFlexible(p, latPaths...),
		Lng:         getFloatFlexible(p, lngPaths...),
		Rating:      getFloatFlexible(p, ratingPaths...),
		ReviewCount: getIntFlexible(p, reviewPaths...),
		Stars:       getFloatFlexible(p, starsPaths...),
		MainPhoto:   firstAlias(p, "photo"),
		Address:     firstAlias(p, "address"),
	}
}
