package port

import (
	"context"
	"errors"
	"time"

	"pricewave/internal/core/domain"
)

// Revert precondition failures. These are rejected synchronously with a
// specific reason and are never retried.
var (
	ErrNotCompleted    = errors.New("campaign is not completed")
	ErrAlreadyReverted = errors.New("campaign has already been reverted")
	ErrNoLogs          = errors.New("no log entries found for this campaign")
	ErrNotRevertible   = errors.New("campaign is too old to revert (no product ids stored)")
)

// ErrNoSubscription gates apply requests for shops without an active plan.
var ErrNoSubscription = errors.New("active subscription required")

// ErrInvalidAdjustment rejects apply requests whose adjustment fails
// validation.
var ErrInvalidAdjustment = errors.New("invalid adjustment")

// ErrNotCancelable rejects cancellation of campaigns that are not in the
// scheduled state.
var ErrNotCancelable = errors.New("only scheduled campaigns can be canceled")

// CampaignUseCase is the primary port into the campaign engine.
type CampaignUseCase interface {
	// Preview computes old→new prices for every variant matching the filter
	// without touching the catalog or the store.
	Preview(ctx context.Context, shop string, filter domain.TargetFilter, adj domain.Adjustment) ([]PreviewRow, error)

	// Apply creates a campaign from the request. A future ScheduledAt leaves
	// it for the scheduler (pre-creating the paired auto-revert when RevertAt
	// is also set); otherwise the campaign executes synchronously.
	Apply(ctx context.Context, req ApplyRequest) (*ApplyResponse, error)

	// Execute drives one campaign through its state machine. It is safely
	// re-invokable: variants that already have a log row are skipped.
	Execute(ctx context.Context, campaignID int64) (*ExecutionResult, error)

	// Revert builds the inverse mutation of a completed campaign from its
	// logs, applies it under a new linked campaign and stamps the source as
	// reverted.
	Revert(ctx context.Context, shop string, campaignID int64) (*RevertResult, error)

	// ListCampaigns returns a shop's campaigns, optionally narrowed by status.
	ListCampaigns(ctx context.Context, shop string, status *domain.Status) ([]domain.Campaign, error)
	// GetCampaign returns one campaign with its logs.
	GetCampaign(ctx context.Context, shop string, id int64) (*domain.Campaign, []domain.PriceLog, error)
	// CancelCampaign cancels a scheduled campaign and cascades to its paired
	// auto-revert campaign.
	CancelCampaign(ctx context.Context, shop string, id int64) error

	// FilterOptions lists collections, vendors and product types usable as
	// target filters.
	FilterOptions(ctx context.Context, shop string) (*FilterOptions, error)

	// RemoveShop deletes all campaign data of an offboarded tenant.
	RemoveShop(ctx context.Context, shop string) error
}

// PreviewRow is one variant's computed change in a preview.
type PreviewRow struct {
	ProductID    string  `json:"productId"`
	ProductTitle string  `json:"productTitle"`
	VariantID    string  `json:"variantId"`
	VariantTitle string  `json:"variantTitle"`
	OldPrice     float64 `json:"oldPrice"`
	NewPrice     float64 `json:"newPrice"`
	Valid        bool    `json:"valid"`
	Reason       string  `json:"reason,omitempty"`
}

// ApplyRequest describes a new adjustment run.
type ApplyRequest struct {
	Shop        string
	Title       string
	Filter      domain.TargetFilter
	Adjustment  domain.Adjustment
	CompareAt   bool
	ScheduledAt *time.Time
	RevertAt    *time.Time
}

// ApplyResponse reports either a scheduled campaign or the synchronous
// execution result.
type ApplyResponse struct {
	CampaignID int64            `json:"campaignId"`
	Scheduled  bool             `json:"scheduled"`
	Result     *ExecutionResult `json:"result,omitempty"`
}

// ExecutionResult summarises one campaign execution. Partial success is
// represented as a completed campaign with a non-zero failure count;
// campaign-level failures surface as errors, not here.
type ExecutionResult struct {
	Total        int             `json:"total"`
	SuccessCount int             `json:"successCount"`
	FailureCount int             `json:"failureCount"`
	Failures     []FailureDetail `json:"failures"`
	Updates      []PriceChange   `json:"updates"`
}

// FailureDetail identifies one variant whose mutation failed.
type FailureDetail struct {
	VariantID    string `json:"variantId"`
	ProductTitle string `json:"productTitle"`
	VariantTitle string `json:"variantTitle"`
	Error        string `json:"error"`
}

// PriceChange is one successfully applied old→new change.
type PriceChange struct {
	ProductTitle string  `json:"productTitle"`
	VariantTitle string  `json:"variantTitle"`
	OldPrice     float64 `json:"oldPrice"`
	NewPrice     float64 `json:"newPrice"`
}

// RevertResult reports a completed revert.
type RevertResult struct {
	RevertCampaignID int64            `json:"revertCampaignId"`
	Result           *ExecutionResult `json:"result"`
}

// FilterOptions lists the values available for target filters.
type FilterOptions struct {
	Collections  []domain.Collection `json:"collections"`
	Vendors      []string            `json:"vendors"`
	ProductTypes []string            `json:"productTypes"`
}
