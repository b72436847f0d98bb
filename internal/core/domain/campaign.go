package domain

import "time"

// Status is the lifecycle state of a campaign.
// Transitions: scheduled → processing → {completed | failed};
// processing → scheduled only through crash recovery on scheduler start.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// AdjustmentType identifies how the magnitude is interpreted. AutoRevert
// campaigns carry no magnitude of their own; they restore prices recorded
// in the linked campaign's logs.
type AdjustmentType string

const (
	AdjustmentPercentage  AdjustmentType = "percentage"
	AdjustmentFixedAmount AdjustmentType = "fixed_amount"
	AdjustmentAutoRevert  AdjustmentType = "auto_revert"
)

// Strategy is the direction of a price adjustment.
type Strategy string

const (
	StrategyIncrease Strategy = "increase"
	StrategyDecrease Strategy = "decrease"
)

// Inverse returns the opposite direction, used when building revert
// campaigns.
func (s Strategy) Inverse() Strategy {
	if s == StrategyIncrease {
		return StrategyDecrease
	}
	return StrategyIncrease
}

// Rounding selects an optional price-point rounding applied after the
// adjustment.
type Rounding string

const (
	RoundingNone Rounding = "NONE"
	Rounding99   Rounding = "ROUND_99"
	Rounding95   Rounding = "ROUND_95"
)

// Campaign represents one bulk price adjustment run. A campaign is created
// either by an apply request (immediate or scheduled) or by the executor
// itself when arming an auto-revert at a sale-window end.
type Campaign struct {
	ID    int64
	Shop  string
	Title string

	// Target selection. CollectionID is the legacy field kept as a
	// fallback for records created before FilterType existed.
	FilterType   FilterType
	FilterValue  string
	CollectionID string

	Type           AdjustmentType
	Strategy       Strategy
	Value          float64
	Rounding       Rounding
	CompareAtPrice bool

	Status        Status
	FailureReason string

	ScheduledAt *time.Time
	RevertAt    *time.Time
	ExecutedAt  *time.Time

	// RevertedAt and RevertCampaignID are stamped on a completed campaign
	// once a revert (manual or automatic) has restored its prices.
	RevertedAt       *time.Time
	RevertCampaignID *int64
	// LinkedCampaignID points an auto-revert campaign at its parent.
	LinkedCampaignID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Adjustment is the pure calculation input derived from a campaign.
func (c Campaign) Adjustment() Adjustment {
	return Adjustment{
		Type:     c.Type,
		Strategy: c.Strategy,
		Value:    c.Value,
		Rounding: c.Rounding,
	}
}

// TargetFilter resolves the campaign's stored filter fields into the
// specification handed to the catalog gateway, honouring the legacy
// collection-id fallback.
func (c Campaign) TargetFilter() TargetFilter {
	ft := c.FilterType
	if ft == "" {
		ft = FilterCollection
	}
	return TargetFilter{
		Type:         ft,
		Value:        c.FilterValue,
		CollectionID: c.CollectionID,
	}
}

// Adjustment describes a single price transformation.
type Adjustment struct {
	Type     AdjustmentType
	Strategy Strategy
	Value    float64
	Rounding Rounding
}
