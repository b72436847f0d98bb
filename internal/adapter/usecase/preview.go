package usecase

import (
	"context"
	"strconv"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
	"pricewave/internal/core/pricing"
)

// Preview computes the old→new price for every variant matching the filter
// without mutating anything. Invalid results are included with their
// reason so the operator sees what the apply would skip.
func (s *CampaignService) Preview(ctx context.Context, shop string, filter domain.TargetFilter, adj domain.Adjustment) ([]port.PreviewRow, error) {
	products, err := s.catalog.FetchTargets(ctx, shop, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]port.PreviewRow, 0)
	for _, p := range products {
		for _, v := range p.Variants {
			oldPrice, perr := strconv.ParseFloat(v.Price, 64)
			if perr != nil {
				rows = append(rows, port.PreviewRow{
					ProductID:    p.ID,
					ProductTitle: p.Title,
					VariantID:    v.ID,
					VariantTitle: v.Title,
					Valid:        false,
					Reason:       "Unparseable price: " + v.Price,
				})
				continue
			}
			res := pricing.Calculate(oldPrice, adj)
			rows = append(rows, port.PreviewRow{
				ProductID:    p.ID,
				ProductTitle: p.Title,
				VariantID:    v.ID,
				VariantTitle: v.Title,
				OldPrice:     res.OldPrice,
				NewPrice:     res.NewPrice,
				Valid:        res.Valid,
				Reason:       res.Reason,
			})
		}
	}
	return rows, nil
}
