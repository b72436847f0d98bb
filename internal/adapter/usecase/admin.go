package usecase

import (
	"context"
	"log/slog"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// ListCampaigns returns a shop's campaigns, optionally narrowed by status.
func (s *CampaignService) ListCampaigns(ctx context.Context, shop string, status *domain.Status) ([]domain.Campaign, error) {
	return s.store.FindMany(ctx, port.CampaignFilter{Shop: &shop, Status: status})
}

// GetCampaign returns one campaign and its logs.
func (s *CampaignService) GetCampaign(ctx context.Context, shop string, id int64) (*domain.Campaign, []domain.PriceLog, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if c.Shop != shop {
		return nil, nil, port.ErrCampaignNotFound
	}
	logs, err := s.store.FindLogs(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, logs, nil
}

// CancelCampaign cancels a not-yet-due scheduled campaign. A paired
// auto-revert campaign is cascade-canceled; cancellation has no effect on
// an already-running execution.
func (s *CampaignService) CancelCampaign(ctx context.Context, shop string, id int64) error {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Shop != shop {
		return port.ErrCampaignNotFound
	}
	if c.Status != domain.StatusScheduled {
		return port.ErrNotCancelable
	}

	if err = s.setStatus(ctx, c.ID, domain.StatusCanceled); err != nil {
		return err
	}

	autoRevert := domain.AdjustmentAutoRevert
	linked, err := s.store.FindMany(ctx, port.CampaignFilter{
		LinkedCampaignID: &c.ID,
		Type:             &autoRevert,
	})
	if err != nil {
		return err
	}
	for _, ar := range linked {
		if ar.Status != domain.StatusScheduled {
			continue
		}
		if err = s.setStatus(ctx, ar.ID, domain.StatusCanceled); err != nil {
			return err
		}
	}
	return nil
}

// FilterOptions lists the collections, vendors and product types available
// as target filters.
func (s *CampaignService) FilterOptions(ctx context.Context, shop string) (*port.FilterOptions, error) {
	collections, err := s.catalog.Collections(ctx, shop)
	if err != nil {
		return nil, err
	}
	vendors, err := s.catalog.Vendors(ctx, shop)
	if err != nil {
		return nil, err
	}
	types, err := s.catalog.ProductTypes(ctx, shop)
	if err != nil {
		return nil, err
	}
	return &port.FilterOptions{Collections: collections, Vendors: vendors, ProductTypes: types}, nil
}

// RemoveShop deletes all campaign data of an offboarded tenant.
func (s *CampaignService) RemoveShop(ctx context.Context, shop string) error {
	if err := s.store.DeleteByShop(ctx, shop); err != nil {
		return err
	}
	s.logger.Info("shop data removed", slog.String("shop", shop))
	return nil
}
