// Package memory holds the static pricing segment table used when no
// database is configured.
package memory

import (
	"context"

	"hotel_bff/internal/domain"
)

func f(v float64) *float64 { return &v }

// DefaultSegments is the built-in table. Margins and discounts are percentages.
var DefaultSegments = []domain.SegmentRow{
	{ID: domain.SegmentEmployee, Name: "Employee", EffectiveMargin: f(0), DisplayDiscountPercent: f(15), IsCug: true},
	{ID: domain.SegmentB2B, Name: "Business", EffectiveMargin: f(5), IsCug: true},
	{ID: domain.SegmentMemberExplorer, Name: "Member · Explorer", EffectiveMargin: f(10), DisplayDiscountPercent: f(0), IsCug: true},
	{ID: domain.SegmentMemberAdventurer, Name: "Member · Adventurer", EffectiveMargin: f(8), DisplayDiscountPercent: f(5), IsCug: true},
	{ID: domain.SegmentMemberVoyager, Name: "Member · Voyager", EffectiveMargin: f(6), AdditionalMarkup: f(0), DisplayDiscountPercent: f(10), IsCug: true},
}

type SegmentStore struct {
	rows map[string]domain.SegmentRow
}

func NewSegmentStore(rows []domain.SegmentRow) *SegmentStore {
	m := make(map[string]domain.SegmentRow, len(rows))
	for _, r := range rows {
		m[r.ID] = r
	}
	return &SegmentStore{rows: m}
}

func (s *SegmentStore) Segment(_ context.Context, id string) (domain.SegmentRow, error) {
	r, ok := s.rows[id]
	if !ok {
		return domain.SegmentRow{}, domain.ErrNotFound
	}
	return r, nil
}
