package catalog_test

import (
	"errors"
	"testing"

	"hotel_bff/internal/catalog"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/restrict"
)

func TestDefaultCitiesPassDefaultPolicy(t *testing.T) {
	c := catalog.New(catalog.DefaultCities, restrict.Default())
	if got := len(c.Cities()); got != len(catalog.DefaultCities) {
		t.Fatalf("expected all %d default cities, got %d", len(catalog.DefaultCities), got)
	}
}

func TestCitiesRecheckedAtReadTime(t *testing.T) {
	cities := []catalog.City{
		{Slug: "cairo", Name: "Cairo", Country: "EG", Lat: 30.04, Lng: 31.23},
		{Slug: "by-code", Name: "Somewhere", Country: "il", Lat: 0, Lng: 0},
		{Slug: "by-box", Name: "Coastal", Country: "", Lat: 32.08, Lng: 34.78},
		{Slug: "by-name", Name: "Visit Israel", Country: "", Lat: 0, Lng: 0},
		{Slug: "by-id", Name: "Plain", PlaceID: "ChIJ-blocked", Lat: 0, Lng: 0},
	}
	c := catalog.New(cities, restrict.Default("ChIJ-blocked"))

	got := c.Cities()
	if len(got) != 1 || got[0].Slug != "cairo" {
		t.Fatalf("expected only cairo, got %+v", got)
	}
	for _, slug := range []string{"by-code", "by-box", "by-name", "by-id", "nowhere"} {
		if _, err := c.BySlug(slug); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("%s: expected not found, got %v", slug, err)
		}
	}
	if city, err := c.BySlug(" CAIRO "); err != nil || city.Name != "Cairo" {
		t.Fatalf("by slug: %+v %v", city, err)
	}
}
