package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_bff/internal/app"
	"hotel_bff/internal/catalog"
	"hotel_bff/internal/domain"
	"hotel_bff/internal/identity"
	"hotel_bff/internal/search"
)

type Handlers struct {
	Codec   *identity.Codec
	Keys    *app.KeyRing
	Margins *app.MarginResolver
	Places  *app.PlacesService
	Hotels  *app.HotelService
	Rates   *app.RateService
	Catalog *catalog.Catalog
}

const (
	placeUnavailable = "Place not available"
	hotelUnavailable = "Hotel not available"
	maxBody          = 1 << 20
)

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/logout", h.logout)
		r.Get("/auth/me", h.me)

		r.Get("/places/autocomplete", h.autocomplete)
		r.Get("/places/details", h.placeDetails)
		r.Get("/places/reverse-geocode", h.reverseGeocode)
		r.Get("/cities", h.cities)
		r.Get("/cities/{slug}", h.city)

		r.Get("/hotels/{id}", h.getHotel)
		r.Post("/hotels/batch", h.hotelsBatch)

		r.Post("/rates/search", h.searchRates)
		r.Get("/rates/search", h.searchRatesQuery)
		r.Post("/rates/hotel", h.hotelRates)
		r.Post("/rates/prebook", h.prebook)
		r.Post("/rates/book", h.book)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Msg: "invalid JSON body"}
	}
	return nil
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeError(w, r, errInternal, "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) apiKey(r *http.Request) (string, error) {
	return h.Keys.APIKey(app.ChannelFromIdentity(identity.FromContext(r.Context()), time.Now()))
}

// ---- auth ----

type loginRequest struct {
	Email         string  `json:"email"`
	DisplayName   *string `json:"displayName"`
	Phone         *string `json:"phone"`
	UserType      string  `json:"userType"`
	LoyaltyLevel  string  `json:"loyaltyLevel"`
	BookingsCount *int    `json:"bookingsCount"`
	AccountID     *string `json:"accountId"`
}

type meResponse struct {
	Authenticated bool                `json:"authenticated"`
	Channel       domain.Channel      `json:"channel"`
	Profile       *domain.UserProfile `json:"profile,omitempty"`
	Segment       string              `json:"segment,omitempty"`
	PromoConfig   domain.PromoConfig  `json:"promoConfig"`
}

func (h *Handlers) describe(r *http.Request, id *domain.Identity) (meResponse, error) {
	ch := app.ChannelFromIdentity(id, time.Now())
	out := meResponse{Channel: ch, PromoConfig: domain.PromoConfig{}}
	if ch != domain.ChannelCUG {
		return out, nil
	}
	m, err := h.Margins.ResolveMargin(r.Context(), &id.Profile, ch)
	if err != nil {
		return meResponse{}, err
	}
	out.Authenticated = true
	out.Profile = &id.Profile
	out.Segment = m.SegmentID
	out.PromoConfig = app.PromoFor(ch, m)
	return out, nil
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if at := strings.LastIndex(in.Email, "@"); at <= 0 || at == len(in.Email)-1 {
		writeError(w, r, domain.Invalid("email", "is invalid"), "")
		return
	}
	profile := domain.UserProfile{
		UserID:        uuid.NewString(),
		Email:         in.Email,
		DisplayName:   in.DisplayName,
		Phone:         in.Phone,
		UserType:      domain.ParseUserType(in.UserType),
		LoyaltyLevel:  domain.ParseLoyaltyLevel(in.LoyaltyLevel),
		BookingsCount: in.BookingsCount,
		AccountID:     in.AccountID,
	}
	id := h.Codec.NewIdentity(profile)
	ck, err := h.Codec.Encode(id)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	out, err := h.describe(r, &id)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	http.SetCookie(w, ck)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.Codec.Clear())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	out, err := h.describe(r, identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- places ----

func (h *Handlers) autocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preds, err := h.Places.Autocomplete(r.Context(), q.Get("input"), q.Get("sessionToken"))
	if err != nil {
		writeError(w, r, err, placeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": preds})
}

func (h *Handlers) placeDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.Places.Details(r.Context(), q.Get("placeId"), q.Get("sessionToken"))
	if err != nil {
		writeError(w, r, err, placeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) reverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, r, domain.Invalid("lat,lng", "must be numbers"), "")
		return
	}
	p, err := h.Places.ReverseGeocode(r.Context(), lat, lng)
	if err != nil {
		writeError(w, r, err, placeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) cities(w http.ResponseWriter, r *http.Request) {
	writeCacheable(w, r, map[string]any{"cities": h.Catalog.Cities()})
}

func (h *Handlers) city(w http.ResponseWriter, r *http.Request) {
	c, err := h.Catalog.BySlug(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, placeUnavailable)
		return
	}
	writeCacheable(w, r, c)
}

// ---- hotels ----

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	key, err := h.apiKey(r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	hd, err := h.Hotels.Get(r.Context(), key, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, hotelUnavailable)
		return
	}
	writeCacheable(w, r, hd)
}

func (h *Handlers) hotelsBatch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		HotelIDs []string `json:"hotelIds"`
	}
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}
	key, err := h.apiKey(r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	out, err := h.Hotels.Batch(r.Context(), key, in.HotelIDs)
	if err != nil {
		writeError(w, r, err, hotelUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- rates ----

func (h *Handlers) searchRates(w http.ResponseWriter, r *http.Request) {
	var q domain.RateQuery
	if err := decodeBody(w, r, &q); err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := h.Rates.Search(r.Context(), q, identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, placeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// searchRatesQuery serves the results page state straight from its query string.
func (h *Handlers) searchRatesQuery(w http.ResponseWriter, r *http.Request) {
	p := search.Parse(r.URL.Query())
	q := p.RateQuery()
	if t, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil {
		q.Timeout = &t
	}
	res, err := h.Rates.Search(r.Context(), q, identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, placeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, p.Apply(res))
}

func (h *Handlers) hotelRates(w http.ResponseWriter, r *http.Request) {
	var q domain.RateQuery
	if err := decodeBody(w, r, &q); err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := h.Rates.HotelRates(r.Context(), q, identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, hotelUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) prebook(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OfferID string `json:"offerId"`
	}
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := h.Rates.Prebook(r.Context(), in.OfferID, identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, "Offer not available")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) book(w http.ResponseWriter, r *http.Request) {
	var in domain.BookRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err, "")
		return
	}
	res, err := h.Rates.Book(r.Context(), in, identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, "Booking not available")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
