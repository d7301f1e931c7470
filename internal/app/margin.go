package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_bff/internal/domain"
)

type MarginResolver struct {
	store          domain.SegmentStore
	employeeDomain string
}

func NewMarginResolver(store domain.SegmentStore, employeeDomain string) *MarginResolver {
	return &MarginResolver{store: store, employeeDomain: strings.ToLower(strings.TrimSpace(employeeDomain))}
}

// ResolveSegmentID applies the priority order:
// account id, staff email domain, user type (with loyalty tier), default.
func (m *MarginResolver) ResolveSegmentID(p domain.UserProfile) string {
	if p.AccountID != nil && strings.TrimSpace(*p.AccountID) != "" {
		return domain.SegmentB2B
	}
	if m.employeeDomain != "" && p.EmailDomain() == m.employeeDomain {
		return domain.SegmentEmployee
	}
	switch p.UserType {
	case domain.UserTypeEmployee:
		return domain.SegmentEmployee
	case domain.UserTypeB2B:
		return domain.SegmentB2B
	case domain.UserTypeMember:
		switch p.LoyaltyLevel {
		case domain.LoyaltyVoyager:
			return domain.SegmentMemberVoyager
		case domain.LoyaltyAdventurer:
			return domain.SegmentMemberAdventurer
		default:
			return domain.SegmentMemberExplorer
		}
	}
	return domain.DefaultSegment
}

// ResolveMargin returns an empty result for guests: they get the provider's base price.
func (m *MarginResolver) ResolveMargin(ctx context.Context, p *domain.UserProfile, ch domain.Channel) (domain.MarginResult, error) {
	if ch != domain.ChannelCUG || p == nil {
		return domain.MarginResult{}, nil
	}
	id := m.ResolveSegmentID(*p)
	row, err := m.store.Segment(ctx, id)
	if errors.Is(err, domain.ErrNotFound) && id != domain.DefaultSegment {
		log.Warn().Str("segment", id).Msg("segment missing, using default")
		row, err = m.store.Segment(ctx, domain.DefaultSegment)
	}
	if err != nil {
		return domain.MarginResult{}, err
	}
	return marginFromSegment(row), nil
}

func marginFromSegment(row domain.SegmentRow) domain.MarginResult {
	out := domain.MarginResult{SegmentID: row.ID}
	if row.EffectiveMargin != nil {
		v := *row.EffectiveMargin
		out.Margin = &v
	}
	if row.AdditionalMarkup != nil {
		v := *row.AdditionalMarkup
		out.AdditionalMarkup = &v
	}
	// zero or negative would render a "0% off" badge
	if row.DisplayDiscountPercent != nil && *row.DisplayDiscountPercent > 0 {
		v := *row.DisplayDiscountPercent
		out.DisplayDiscountPercent = &v
	}
	return out
}

func PromoFor(ch domain.Channel, r domain.MarginResult) domain.PromoConfig {
	return domain.PromoConfig{IsCug: ch == domain.ChannelCUG, DisplayDiscountPercent: r.DisplayDiscountPercent}
}
