package usecase

import (
	"context"
	"fmt"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
	"pricewave/internal/core/pricing"
)

// Apply creates a campaign from the request after passing the billing gate
// and magnitude validation. Future-scheduled campaigns are left for the
// scheduler; everything else executes synchronously.
func (s *CampaignService) Apply(ctx context.Context, req port.ApplyRequest) (*port.ApplyResponse, error) {
	active, err := s.billing.HasActiveSubscription(ctx, req.Shop)
	if err != nil {
		return nil, fmt.Errorf("subscription check: %w", err)
	}
	if !active {
		return nil, port.ErrNoSubscription
	}

	if ok, reason := pricing.Validate(req.Adjustment); !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrInvalidAdjustment, reason)
	}

	status := domain.StatusProcessing
	if req.ScheduledAt != nil {
		status = domain.StatusScheduled
	}

	c := domain.Campaign{
		Shop:           req.Shop,
		Title:          req.Title,
		FilterType:     req.Filter.Type,
		Type:           req.Adjustment.Type,
		Strategy:       req.Adjustment.Strategy,
		Value:          req.Adjustment.Value,
		Rounding:       req.Adjustment.Rounding,
		CompareAtPrice: req.CompareAt,
		Status:         status,
		ScheduledAt:    req.ScheduledAt,
		RevertAt:       req.RevertAt,
	}
	switch req.Filter.Type {
	case domain.FilterCollection:
		c.CollectionID = req.Filter.Value
	case domain.FilterAll:
	default:
		c.FilterValue = req.Filter.Value
	}
	if c.Rounding == "" {
		c.Rounding = domain.RoundingNone
	}

	c, err = s.store.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil && req.ScheduledAt.After(s.now()) {
		// Pre-create the paired auto-revert so the pair is visible before
		// the sale even starts.
		if req.RevertAt != nil {
			if err = s.armAutoRevert(ctx, &c); err != nil {
				return nil, err
			}
		}
		return &port.ApplyResponse{CampaignID: c.ID, Scheduled: true}, nil
	}

	result, err := s.Execute(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &port.ApplyResponse{CampaignID: c.ID, Result: result}, nil
}
