package domain

import (
	"strings"
	"time"
)

type UserType string

const (
	UserTypeMember   UserType = "member"
	UserTypeEmployee UserType = "employee"
	UserTypeB2B      UserType = "b2b"
)

type LoyaltyLevel string

const (
	LoyaltyExplorer   LoyaltyLevel = "explorer"
	LoyaltyAdventurer LoyaltyLevel = "adventurer"
	LoyaltyVoyager    LoyaltyLevel = "voyager"
)

// ParseUserType maps free input to a known user type, defaulting to member.
func ParseUserType(s string) UserType {
	switch UserType(strings.ToLower(strings.TrimSpace(s))) {
	case UserTypeEmployee:
		return UserTypeEmployee
	case UserTypeB2B:
		return UserTypeB2B
	default:
		return UserTypeMember
	}
}

// ParseLoyaltyLevel maps free input to a known tier, defaulting to explorer.
func ParseLoyaltyLevel(s string) LoyaltyLevel {
	switch LoyaltyLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LoyaltyVoyager:
		return LoyaltyVoyager
	case LoyaltyAdventurer:
		return LoyaltyAdventurer
	default:
		return LoyaltyExplorer
	}
}

type Session struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserProfile struct {
	UserID        string       `json:"userId"`
	Email         string       `json:"email"`
	DisplayName   *string      `json:"displayName,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	UserType      UserType     `json:"userType"`
	LoyaltyLevel  LoyaltyLevel `json:"loyaltyLevel"`
	BookingsCount *int         `json:"bookingsCount,omitempty"`
	AccountID     *string      `json:"accountId,omitempty"`
}

// EmailDomain returns the lower-cased part after the last '@', or "".
func (p UserProfile) EmailDomain() string {
	i := strings.LastIndexByte(p.Email, '@')
	if i < 0 || i == len(p.Email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Email[i+1:]))
}

type Identity struct {
	Session Session     `json:"session"`
	Profile UserProfile `json:"profile"`
}

// Expired reports whether the session is no longer usable at now.
// A session whose expiry is not after its creation is treated as expired.
func (id *Identity) Expired(now time.Time) bool {
	if id == nil {
		return true
	}
	if !id.Session.ExpiresAt.After(id.Session.CreatedAt) {
		return true
	}
	return !id.Session.ExpiresAt.After(now)
}

type Channel string

const (
	ChannelB2C Channel = "b2c"
	ChannelCUG Channel = "cug"
)
