// Package identity turns the logged-in user's session and profile into a
// signed cookie and back. There is no server-side session store.
package identity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"hotel_bff/internal/domain"
)

const (
	CookieName = "hb_identity"
	TTL        = 7 * 24 * time.Hour
)

type claims struct {
	Session domain.Session     `json:"session"`
	Profile domain.UserProfile `json:"profile"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// New returns a codec signing with HS256. secure controls the cookie's Secure flag.
func New(secret string, secure bool) (*Codec, error) {
	if secret == "" {
		return nil, &domain.ConfigurationError{Secret: "COOKIE_SECRET"}
	}
	return &Codec{secret: []byte(secret), secure: secure, now: time.Now}, nil
}

// NewIdentity starts a fresh session for profile.
func (c *Codec) NewIdentity(p domain.UserProfile) domain.Identity {
	now := c.now().UTC().Truncate(time.Second)
	return domain.Identity{
		Session: domain.Session{
			SessionID: uuid.New().String(),
			CreatedAt: now,
			ExpiresAt: now.Add(TTL),
		},
		Profile: p,
	}
}

func (c *Codec) Encode(id domain.Identity) (*http.Cookie, error) {
	if id.Session.SessionID == "" {
		return nil, errors.New("identity: empty session id")
	}
	cl := claims{
		Session: id.Session,
		Profile: id.Profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Profile.UserID,
			ID:        id.Session.SessionID,
			IssuedAt:  jwt.NewNumericDate(id.Session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(id.Session.ExpiresAt),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  id.Session.ExpiresAt,
		MaxAge:   int(time.Until(id.Session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Decode never fails: anything malformed, tampered with or expired is a guest.
func (c *Codec) Decode(raw string) *domain.Identity {
	if raw == "" {
		return nil
	}
	var cl claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) { return c.secret, nil })
	if err != nil || !tok.Valid {
		return nil
	}
	id := &domain.Identity{Session: cl.Session, Profile: cl.Profile}
	if id.Expired(c.now()) {
		return nil
	}
	return id
}

// Clear overwrites the cookie with an already expired empty value.
func (c *Codec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest decodes the identity cookie, if any.
func (c *Codec) FromRequest(r *http.Request) *domain.Identity {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return c.Decode(ck.Value)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns nil for guests.
func FromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(ctxKey{}).(*domain.Identity)
	return id
}
