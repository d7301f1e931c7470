package shared

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("LITEAPI_RPS", "25")
	t.Setenv("LITEAPI_KEY_B2C", "pub")
	t.Setenv("PLACES_USE_NEW_API", "true")
	t.Setenv("RESTRICTED_PLACE_IDS", " a, ,b ")
	t.Setenv("SEARCH_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("EMPLOYEE_EMAIL_DOMAIN", "")

	c := Load()
	if !c.Dev() || c.LiteAPIRPS != 25 || c.LiteAPIKeyB2C != "pub" || !c.PlacesUseNewAPI {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if len(c.RestrictedPlaceIDs) != 2 || c.RestrictedPlaceIDs[1] != "b" {
		t.Fatalf("restricted ids = %v", c.RestrictedPlaceIDs)
	}
	if c.SearchTimeout != 15*time.Second {
		t.Fatalf("bad number must fall back to default, got %s", c.SearchTimeout)
	}
	if c.EmployeeEmailDomain != "breadfast.com" || c.MySQLDSN != "" {
		t.Fatalf("defaults not applied: %+v", c)
	}
}
