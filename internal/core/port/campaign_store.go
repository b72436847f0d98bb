package port

import (
	"context"
	"errors"
	"time"

	"pricewave/internal/core/domain"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignStore is the durable record of campaigns and their price logs.
// It is an outbound port; every operation is atomic at the single-record
// or batch-append level, which is all the core logic requires.
type CampaignStore interface {
	// Create persists a new campaign and returns it with its identity set.
	Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	// FindByID returns the campaign or ErrCampaignNotFound.
	FindByID(ctx context.Context, id int64) (*domain.Campaign, error)
	// FindMany returns campaigns matching every set predicate of the filter.
	FindMany(ctx context.Context, f CampaignFilter) ([]domain.Campaign, error)
	// Update applies the non-nil fields of the patch to one campaign.
	Update(ctx context.Context, id int64, p CampaignPatch) error
	// ResetProcessing moves every processing campaign back to scheduled and
	// reports how many were moved. Used for crash recovery on startup.
	ResetProcessing(ctx context.Context) (int64, error)

	// AppendLogs writes one immutable log row per mutated variant.
	AppendLogs(ctx context.Context, logs []domain.PriceLog) error
	// FindLogs returns all log rows of a campaign.
	FindLogs(ctx context.Context, campaignID int64) ([]domain.PriceLog, error)

	// DeleteByShop removes a shop's campaigns and logs on tenant offboarding.
	DeleteByShop(ctx context.Context, shop string) error
}

// CampaignFilter narrows FindMany. Nil fields are ignored.
type CampaignFilter struct {
	Shop             *string
	Status           *domain.Status
	Type             *domain.AdjustmentType
	LinkedCampaignID *int64
	// DueBefore matches campaigns whose scheduledAt is at or before the
	// given instant.
	DueBefore *time.Time
}

// CampaignPatch is a partial campaign update. Nil fields are left
// untouched.
type CampaignPatch struct {
	Status           *domain.Status
	FailureReason    *string
	ExecutedAt       *time.Time
	RevertedAt       *time.Time
	RevertCampaignID *int64
}
