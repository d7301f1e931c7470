// Package catalog serves the curated destinations shown before a user searches.
package catalog

import (
	"strings"

	"hotel_bff/internal/adapters/observability"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/restrict"
)

type City struct {
	Slug    string  `json:"slug"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	PlaceID string  `json:"placeId,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	// Radius in km for coordinate searches.
	Radius float64 `json:"radius"`
}

var DefaultCities = []City{
	{Slug: "cairo", Name: "Cairo", Country: "EG", Lat: 30.0444, Lng: 31.2357, Radius: 15},
	{Slug: "sharm-el-sheikh", Name: "Sharm El Sheikh", Country: "EG", Lat: 27.9158, Lng: 34.3299, Radius: 20},
	{Slug: "hurghada", Name: "Hurghada", Country: "EG", Lat: 27.2579, Lng: 33.8116, Radius: 20},
	{Slug: "dubai", Name: "Dubai", Country: "AE", Lat: 25.2048, Lng: 55.2708, Radius: 20},
	{Slug: "istanbul", Name: "Istanbul", Country: "TR", Lat: 41.0082, Lng: 28.9784, Radius: 15},
	{Slug: "paris", Name: "Paris", Country: "FR", PlaceID: "ChIJD7fiBh9u5kcRYJSMaMOCCwQ", Lat: 48.8566, Lng: 2.3522, Radius: 10},
	{Slug: "london", Name: "London", Country: "GB", PlaceID: "ChIJdd4hrwug2EcRmSrV3Vo6llI", Lat: 51.5072, Lng: -0.1276, Radius: 12},
	{Slug: "barcelona", Name: "Barcelona", Country: "ES", Lat: 41.3874, Lng: 2.1686, Radius: 10},
	{Slug: "marrakech", Name: "Marrakech", Country: "MA", Lat: 31.6295, Lng: -7.9811, Radius: 10},
	{Slug: "new-york", Name: "New York", Country: "US", PlaceID: "ChIJOwg_06VPwokRYv534QaPC8g", Lat: 40.7128, Lng: -74.0060, Radius: 12},
}

type Catalog struct {
	cities   []City
	restrict *restrict.Set
}

func New(cities []City, r *restrict.Set) *Catalog {
	return &Catalog{cities: append([]City(nil), cities...), restrict: r}
}

func (c *Catalog) blocked(city City) bool {
	return c.restrict.IsPlaceIDRestricted(city.PlaceID) ||
		c.restrict.IsCountryRestricted(city.Country) ||
		c.restrict.IsLocationRestricted(city.Lat, city.Lng) ||
		c.restrict.IsTextIndicatingRestrictedCountry(city.Name)
}

// Cities re-checks every entry against the current policy on each read.
func (c *Catalog) Cities() []City {
	out := make([]City, 0, len(c.cities))
	for _, city := range c.cities {
		if !c.blocked(city) {
			out = append(out, city)
		}
	}
	observability.ObserveRestriction("cities", len(c.cities)-len(out))
	return out
}

func (c *Catalog) BySlug(slug string) (City, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, city := range c.cities {
		if city.Slug == slug {
			if c.blocked(city) {
				return City{}, domain.ErrNotFound
			}
			return city, nil
		}
	}
	return City{}, domain.ErrNotFound
}
