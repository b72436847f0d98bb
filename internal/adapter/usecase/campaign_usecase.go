package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pricewave/internal/batch"
	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
	"pricewave/internal/core/pricing"
)

// Wave pacing against the upstream catalog API: at most waveSize mutation
// calls in flight, with a pause between waves.
const (
	defaultWaveSize  = 5
	defaultWaveDelay = 500 * time.Millisecond
)

// CampaignService orchestrates campaign execution, revert and scheduling
// support operations. It implements port.CampaignUseCase.
type CampaignService struct {
	store   port.CampaignStore
	catalog port.CatalogGateway
	billing port.BillingGate
	logger  *slog.Logger

	waveSize  int
	waveDelay time.Duration
	now       func() time.Time
}

// NewCampaignService creates the usecase with production wave pacing.
func NewCampaignService(store port.CampaignStore, catalog port.CatalogGateway, billing port.BillingGate, logger *slog.Logger) *CampaignService {
	return &CampaignService{
		store:     store,
		catalog:   catalog,
		billing:   billing,
		logger:    logger,
		waveSize:  defaultWaveSize,
		waveDelay: defaultWaveDelay,
		now:       time.Now,
	}
}

// mutationBatch groups the variant mutations of one product together with
// the log rows to persist once the remote mutation succeeds.
type mutationBatch struct {
	productID    string
	productTitle string
	items        []port.MutateItem
	changes      []domain.PriceLog
}

// batchResult is the per-batch outcome collected by the wave runner.
type batchResult struct {
	batch   mutationBatch
	success bool
	err     string
}

// Execute drives one campaign through its state machine. Re-invoking it
// after a crash is safe: variants that already have a log row are skipped.
func (s *CampaignService) Execute(ctx context.Context, campaignID int64) (*port.ExecutionResult, error) {
	c, err := s.store.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.StatusCompleted {
		return &port.ExecutionResult{}, nil
	}

	log := s.logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.Int64("campaign_id", c.ID),
		slog.String("shop", c.Shop),
	)

	if c.Type == domain.AdjustmentAutoRevert {
		return s.executeAutoRevert(ctx, log, c)
	}
	return s.executeAdjustment(ctx, log, c)
}

func (s *CampaignService) executeAdjustment(ctx context.Context, log *slog.Logger, c *domain.Campaign) (*port.ExecutionResult, error) {
	// Variants already logged by a prior run are never recomputed or
	// re-submitted.
	existing, err := s.store.FindLogs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	processed := make(map[string]bool, len(existing))
	for _, l := range existing {
		processed[l.VariantID] = true
	}
	if len(processed) > 0 {
		log.Info("resuming campaign", slog.Int("already_processed", len(processed)))
	}

	if err = s.setStatus(ctx, c.ID, domain.StatusProcessing); err != nil {
		return nil, err
	}

	result, err := s.runAdjustment(ctx, log, c, processed)
	if err != nil {
		s.markFailed(ctx, log, c.ID, err)
		return nil, err
	}
	return result, nil
}

func (s *CampaignService) runAdjustment(ctx context.Context, log *slog.Logger, c *domain.Campaign, processed map[string]bool) (*port.ExecutionResult, error) {
	products, err := s.catalog.FetchTargets(ctx, c.Shop, c.TargetFilter())
	if err != nil {
		return nil, fmt.Errorf("fetch targets: %w", err)
	}

	adj := c.Adjustment()
	var batches []mutationBatch
	total := 0
	for _, p := range products {
		b := mutationBatch{productID: p.ID, productTitle: p.Title}
		for _, v := range p.Variants {
			if processed[v.ID] {
				continue
			}
			oldPrice, perr := strconv.ParseFloat(v.Price, 64)
			if perr != nil {
				continue
			}
			res := pricing.Calculate(oldPrice, adj)
			// Invalid results were already surfaced during preview; they
			// are silently excluded from the apply set.
			if !res.Valid {
				continue
			}
			item := port.MutateItem{VariantID: v.ID, Price: formatPrice(res.NewPrice)}
			if c.CompareAtPrice {
				compareAt := formatPrice(res.OldPrice)
				item.CompareAtPrice = &compareAt
			}
			b.items = append(b.items, item)
			b.changes = append(b.changes, domain.PriceLog{
				CampaignID:   c.ID,
				VariantID:    v.ID,
				ProductID:    p.ID,
				ProductTitle: p.Title,
				VariantTitle: v.Title,
				OldPrice:     res.OldPrice,
				NewPrice:     res.NewPrice,
			})
		}
		if len(b.items) > 0 {
			batches = append(batches, b)
			total += len(b.items)
		}
	}

	results := s.applyBatches(ctx, c.Shop, batches)

	executedAt := s.now()
	if err = s.store.Update(ctx, c.ID, port.CampaignPatch{
		Status:     statusPtr(domain.StatusCompleted),
		ExecutedAt: &executedAt,
	}); err != nil {
		return nil, err
	}

	// Arm the paired auto-revert at the sale-window end, unless one is
	// already linked.
	if c.RevertAt != nil {
		if err = s.armAutoRevert(ctx, c); err != nil {
			return nil, err
		}
	}

	summary := summarize(total, results)
	log.Info("campaign completed",
		slog.Int("total", summary.Total),
		slog.Int("succeeded", summary.SuccessCount),
		slog.Int("failed", summary.FailureCount),
	)
	return summary, nil
}

func (s *CampaignService) armAutoRevert(ctx context.Context, c *domain.Campaign) error {
	autoRevert := domain.AdjustmentAutoRevert
	linked, err := s.store.FindMany(ctx, port.CampaignFilter{
		LinkedCampaignID: &c.ID,
		Type:             &autoRevert,
	})
	if err != nil {
		return fmt.Errorf("find linked auto-revert: %w", err)
	}
	if len(linked) > 0 {
		return nil
	}
	_, err = s.store.Create(ctx, domain.Campaign{
		Shop:             c.Shop,
		Title:            fmt.Sprintf("Auto-revert of #%d", c.ID),
		FilterType:       c.FilterType,
		FilterValue:      c.FilterValue,
		CollectionID:     c.CollectionID,
		Type:             domain.AdjustmentAutoRevert,
		Strategy:         c.Strategy.Inverse(),
		Value:            c.Value,
		Rounding:         c.Rounding,
		CompareAtPrice:   c.CompareAtPrice,
		Status:           domain.StatusScheduled,
		ScheduledAt:      c.RevertAt,
		LinkedCampaignID: &c.ID,
	})
	if err != nil {
		return fmt.Errorf("create auto-revert campaign: %w", err)
	}
	return nil
}

func (s *CampaignService) executeAutoRevert(ctx context.Context, log *slog.Logger, c *domain.Campaign) (*port.ExecutionResult, error) {
	if c.LinkedCampaignID == nil {
		return nil, errors.New("auto-revert campaign missing linked campaign id")
	}

	if err := s.setStatus(ctx, c.ID, domain.StatusProcessing); err != nil {
		return nil, err
	}

	result, err := s.runAutoRevert(ctx, log, c)
	if err != nil {
		s.markFailed(ctx, log, c.ID, err)
		return nil, err
	}
	return result, nil
}

func (s *CampaignService) runAutoRevert(ctx context.Context, log *slog.Logger, c *domain.Campaign) (*port.ExecutionResult, error) {
	source, err := s.store.FindByID(ctx, *c.LinkedCampaignID)
	if err != nil {
		return nil, fmt.Errorf("load linked campaign: %w", err)
	}
	logs, err := s.store.FindLogs(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("load linked campaign logs: %w", err)
	}

	batches, total := inverseBatches(logs, c.ID, source.CompareAtPrice)
	results := s.applyBatches(ctx, c.Shop, batches)

	executedAt := s.now()
	if err = s.store.Update(ctx, c.ID, port.CampaignPatch{
		Status:     statusPtr(domain.StatusCompleted),
		ExecutedAt: &executedAt,
	}); err != nil {
		return nil, err
	}
	revertedAt := s.now()
	if err = s.store.Update(ctx, source.ID, port.CampaignPatch{
		RevertedAt:       &revertedAt,
		RevertCampaignID: &c.ID,
	}); err != nil {
		return nil, err
	}

	summary := summarize(total, results)
	log.Info("auto-revert completed",
		slog.Int64("source_campaign_id", source.ID),
		slog.Int("total", summary.Total),
		slog.Int("failed", summary.FailureCount),
	)
	return summary, nil
}

// inverseBatches builds the mutations restoring the old prices recorded in
// logs, grouped by product. Rows without a product id come from an older
// log schema and cannot be applied. The returned log rows have old/new
// swapped and belong to campaignID.
func inverseBatches(logs []domain.PriceLog, campaignID int64, clearCompareAt bool) ([]mutationBatch, int) {
	byProduct := make(map[string]*mutationBatch)
	var order []string
	total := 0
	for _, l := range logs {
		if l.ProductID == "" {
			continue
		}
		b, ok := byProduct[l.ProductID]
		if !ok {
			b = &mutationBatch{productID: l.ProductID, productTitle: l.ProductTitle}
			byProduct[l.ProductID] = b
			order = append(order, l.ProductID)
		}
		b.items = append(b.items, port.MutateItem{
			VariantID:      l.VariantID,
			Price:          formatPrice(l.OldPrice),
			ClearCompareAt: clearCompareAt,
		})
		b.changes = append(b.changes, domain.PriceLog{
			CampaignID:   campaignID,
			VariantID:    l.VariantID,
			ProductID:    l.ProductID,
			ProductTitle: l.ProductTitle,
			VariantTitle: l.VariantTitle,
			OldPrice:     l.NewPrice,
			NewPrice:     l.OldPrice,
		})
		total++
	}

	batches := make([]mutationBatch, 0, len(order))
	for _, id := range order {
		batches = append(batches, *byProduct[id])
	}
	return batches, total
}

// applyBatches runs the product batches through the catalog gateway in
// rate-paced waves. A log row is appended only for batches whose remote
// mutation succeeded; a log write failure after a successful mutation is
// reported as the batch's failure.
func (s *CampaignService) applyBatches(ctx context.Context, shop string, batches []mutationBatch) []batchResult {
	return batch.Run(ctx, batches, s.waveSize, s.waveDelay, func(ctx context.Context, b mutationBatch) batchResult {
		res := s.catalog.Mutate(ctx, shop, b.productID, b.items)
		if !res.Success {
			msg := strings.Join(res.Errors, ", ")
			if msg == "" {
				msg = "Unknown error"
			}
			return batchResult{batch: b, err: msg}
		}
		if err := s.store.AppendLogs(ctx, b.changes); err != nil {
			return batchResult{batch: b, err: fmt.Sprintf("price change applied but log write failed: %v", err)}
		}
		return batchResult{batch: b, success: true}
	})
}

func summarize(total int, results []batchResult) *port.ExecutionResult {
	out := &port.ExecutionResult{
		Total:    total,
		Failures: []port.FailureDetail{},
		Updates:  []port.PriceChange{},
	}
	for _, r := range results {
		for _, chg := range r.batch.changes {
			if r.success {
				out.SuccessCount++
				out.Updates = append(out.Updates, port.PriceChange{
					ProductTitle: chg.ProductTitle,
					VariantTitle: chg.VariantTitle,
					OldPrice:     chg.OldPrice,
					NewPrice:     chg.NewPrice,
				})
			} else {
				out.FailureCount++
				out.Failures = append(out.Failures, port.FailureDetail{
					VariantID:    chg.VariantID,
					ProductTitle: chg.ProductTitle,
					VariantTitle: chg.VariantTitle,
					Error:        r.err,
				})
			}
		}
	}
	return out
}

func (s *CampaignService) setStatus(ctx context.Context, id int64, status domain.Status) error {
	return s.store.Update(ctx, id, port.CampaignPatch{Status: &status})
}

func (s *CampaignService) markFailed(ctx context.Context, log *slog.Logger, id int64, cause error) {
	reason := cause.Error()
	err := s.store.Update(ctx, id, port.CampaignPatch{
		Status:        statusPtr(domain.StatusFailed),
		FailureReason: &reason,
	})
	if err != nil {
		log.Error("failed to record campaign failure", slog.Any("error", err))
	}
}

func statusPtr(s domain.Status) *domain.Status { return &s }

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
