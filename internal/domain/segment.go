package domain

const (
	SegmentEmployee         = "employee"
	SegmentB2B              = "b2b"
	SegmentMemberExplorer   = "member_explorer"
	SegmentMemberAdventurer = "member_adventurer"
	SegmentMemberVoyager    = "member_voyager"

	DefaultSegment = SegmentMemberExplorer
)

// SegmentRow is one pricing rule bucket. Nil values mean "not configured".
type SegmentRow struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	EffectiveMargin        *float64 `json:"effectiveMargin"`
	AdditionalMarkup       *float64 `json:"additionalMarkup"`
	DisplayDiscountPercent *float64 `json:"displayDiscountPercent"`
	IsCug                  bool     `json:"isCug"`
}

type MarginResult struct {
	SegmentID              string   `json:"segmentId,omitempty"`
	Margin                 *float64 `json:"margin,omitempty"`
	AdditionalMarkup       *float64 `json:"additionalMarkup,omitempty"`
	DisplayDiscountPercent *float64 `json:"displayDiscountPercent,omitempty"`
}

type PromoConfig struct {
	IsCug                  bool     `json:"isCug"`
	DisplayDiscountPercent *float64 `json:"displayDiscountPercent,omitempty"`
}
