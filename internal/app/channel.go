package app

import (
	"time"

	"hotel_bff/internal/domain"
)

// ChannelFromIdentity: logged in (and not expired) is the closed user group.
func ChannelFromIdentity(id *domain.Identity, now time.Time) domain.Channel {
	if id == nil || id.Expired(now) {
		return domain.ChannelB2C
	}
	return domain.ChannelCUG
}

// KeyRing holds the rates provider keys per channel. Build it once at startup.
type KeyRing struct {
	b2c string
	cug string
}

func NewKeyRing(b2c, cug string) *KeyRing { return &KeyRing{b2c: b2c, cug: cug} }

func (k *KeyRing) APIKey(ch domain.Channel) (string, error) {
	if ch == domain.ChannelCUG {
		if k.cug == "" {
			return "", &domain.ConfigurationError{Secret: "LITEAPI_KEY_CUG"}
		}
		return k.cug, nil
	}
	if k.b2c == "" {
		return "", &domain.ConfigurationError{Secret: "LITEAPI_KEY_B2C"}
	}
	return k.b2c, nil
}
