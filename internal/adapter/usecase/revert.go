package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// Revert undoes a completed campaign. The inverse mutation is built
// straight from the campaign's logs (no recomputation) and applied under a
// new campaign linked back to the source. Precondition failures are
// returned as the sentinel errors declared in the port package.
func (s *CampaignService) Revert(ctx context.Context, shop string, campaignID int64) (*port.RevertResult, error) {
	c, err := s.store.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Shop != shop {
		return nil, port.ErrCampaignNotFound
	}
	if c.Status != domain.StatusCompleted {
		return nil, port.ErrNotCompleted
	}
	if c.RevertedAt != nil {
		return nil, port.ErrAlreadyReverted
	}

	logs, err := s.store.FindLogs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, port.ErrNoLogs
	}
	usable := 0
	for _, l := range logs {
		if l.ProductID != "" {
			usable++
		}
	}
	if usable == 0 {
		return nil, port.ErrNotRevertible
	}

	revert, err := s.store.Create(ctx, domain.Campaign{
		Shop:         c.Shop,
		Title:        fmt.Sprintf("Revert of #%d", c.ID),
		FilterType:   c.FilterType,
		FilterValue:  c.FilterValue,
		CollectionID: c.CollectionID,
		Type:         c.Type,
		Strategy:     c.Strategy.Inverse(),
		Value:        c.Value,
		Rounding:     c.Rounding,
		Status:       domain.StatusProcessing,
	})
	if err != nil {
		return nil, err
	}

	log := s.logger.With(
		slog.Int64("campaign_id", revert.ID),
		slog.Int64("source_campaign_id", c.ID),
		slog.String("shop", c.Shop),
	)

	// If the source campaign stamped compare-at prices, the revert clears
	// them again.
	batches, total := inverseBatches(logs, revert.ID, c.CompareAtPrice)
	results := s.applyBatches(ctx, c.Shop, batches)

	executedAt := s.now()
	if err = s.store.Update(ctx, revert.ID, port.CampaignPatch{
		Status:     statusPtr(domain.StatusCompleted),
		ExecutedAt: &executedAt,
	}); err != nil {
		return nil, err
	}
	revertedAt := s.now()
	if err = s.store.Update(ctx, c.ID, port.CampaignPatch{
		RevertedAt:       &revertedAt,
		RevertCampaignID: &revert.ID,
	}); err != nil {
		return nil, err
	}

	summary := summarize(total, results)
	log.Info("campaign reverted",
		slog.Int("total", summary.Total),
		slog.Int("failed", summary.FailureCount),
	)
	return &port.RevertResult{RevertCampaignID: revert.ID, Result: summary}, nil
}
