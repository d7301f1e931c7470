package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string // empty: built-in segment table
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	LiteAPIBase     string
	LiteAPIBookBase string
	LiteAPIKeyB2C   string
	LiteAPIKeyCUG   string
	LiteAPIRPS      int

	PlacesKey        string
	PlacesUseNewAPI  bool
	PlacesLegacyBase string
	PlacesNewBase    string

	CookieSecret        string
	EmployeeEmailDomain string
	RestrictedPlaceIDs  []string

	PaymentPublishableKey string
	PaymentReturnURL      string

	SearchTimeout time.Duration
	CacheTTL      time.Duration

	WarmWorkers  int
	WarmHotelIDs []string
}

// Dev is true for local runs: console logs and non-Secure cookies.
func (c Config) Dev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	abool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		LiteAPIBase:     env("LITEAPI_BASE_URL", "https://api.liteapi.travel/v3.0"),
		LiteAPIBookBase: env("LITEAPI_BOOK_BASE_URL", "https://book.liteapi.travel/v3.0"),
		LiteAPIKeyB2C:   env("LITEAPI_KEY_B2C", ""),
		LiteAPIKeyCUG:   env("LITEAPI_KEY_CUG", ""),
		LiteAPIRPS:      atoi("LITEAPI_RPS", 10),

		PlacesKey:        env("PLACES_API_KEY", ""),
		PlacesUseNewAPI:  abool("PLACES_USE_NEW_API", false),
		PlacesLegacyBase: env("PLACES_LEGACY_BASE_URL", "https://maps.googleapis.com"),
		PlacesNewBase:    env("PLACES_NEW_BASE_URL", "https://places.googleapis.com"),

		CookieSecret:        env("COOKIE_SECRET", ""),
		EmployeeEmailDomain: env("EMPLOYEE_EMAIL_DOMAIN", "breadfast.com"),
		RestrictedPlaceIDs:  list("RESTRICTED_PLACE_IDS"),

		PaymentPublishableKey: env("PAYMENT_PUBLISHABLE_KEY", ""),
		PaymentReturnURL:      env("PAYMENT_RETURN_URL", ""),

		SearchTimeout: time.Duration(atoi("SEARCH_TIMEOUT_SECONDS", 15)) * time.Second,
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		WarmWorkers:  atoi("WARM_WORKERS", 8),
		WarmHotelIDs: list("WARM_HOTEL_IDS"),
	}
	// missing secrets surface as ConfigurationError when first needed
	for k, v := range map[string]string{
		"LITEAPI_KEY_B2C":         c.LiteAPIKeyB2C,
		"LITEAPI_KEY_CUG":         c.LiteAPIKeyCUG,
		"PLACES_API_KEY":          c.PlacesKey,
		"COOKIE_SECRET":           c.CookieSecret,
		"PAYMENT_PUBLISHABLE_KEY": c.PaymentPublishableKey,
	} {
		if v == "" {
			log.Warn().Msgf("%s is empty", k)
		}
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// list reads a comma separated variable, dropping blanks.
func list(k string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(k), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
