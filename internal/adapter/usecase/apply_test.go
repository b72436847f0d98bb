package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
	"pricewave/internal/core/port/porttest"
)

func applyReq() port.ApplyRequest {
	return port.ApplyRequest{
		Shop:   shop,
		Filter: domain.TargetFilter{Type: domain.FilterAll},
		Adjustment: domain.Adjustment{
			Type:     domain.AdjustmentPercentage,
			Strategy: domain.StrategyIncrease,
			Value:    10,
			Rounding: domain.RoundingNone,
		},
	}
}

func TestApplyRequiresSubscription(t *testing.T) {
	store := porttest.NewStore()
	svc := newTestService(store, &porttest.Gateway{}, &porttest.Billing{Active: false})

	_, err := svc.Apply(context.Background(), applyReq())
	assert.ErrorIs(t, err, port.ErrNoSubscription)
	assert.Empty(t, store.Campaigns, "no campaign record for a gated request")
}

func TestApplyRejectsInvalidAdjustment(t *testing.T) {
	store := porttest.NewStore()
	svc := newTestService(store, &porttest.Gateway{}, &porttest.Billing{Active: true})

	req := applyReq()
	req.Adjustment.Value = 2000
	_, err := svc.Apply(context.Background(), req)
	assert.ErrorIs(t, err, port.ErrInvalidAdjustment)
}

func TestApplyImmediateExecutesSynchronously(t *testing.T) {
	store := porttest.NewStore()
	gw := &porttest.Gateway{Products: twoProducts()}
	svc := newTestService(store, gw, &porttest.Billing{Active: true})

	resp, err := svc.Apply(context.Background(), applyReq())
	require.NoError(t, err)
	assert.False(t, resp.Scheduled)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 3, resp.Result.SuccessCount)

	c, _ := store.FindByID(context.Background(), resp.CampaignID)
	assert.Equal(t, domain.StatusCompleted, c.Status)
}

func TestApplyScheduledDefersExecution(t *testing.T) {
	store := porttest.NewStore()
	gw := &porttest.Gateway{Products: twoProducts()}
	svc := newTestService(store, gw, &porttest.Billing{Active: true})

	scheduledAt := time.Now().Add(time.Hour)
	revertAt := time.Now().Add(24 * time.Hour)
	req := applyReq()
	req.ScheduledAt = &scheduledAt
	req.RevertAt = &revertAt

	resp, err := svc.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Scheduled)
	assert.Empty(t, gw.Calls, "nothing executed before the scheduled time")

	c, _ := store.FindByID(context.Background(), resp.CampaignID)
	assert.Equal(t, domain.StatusScheduled, c.Status)

	// The auto-revert pair is pre-created for visibility.
	autoRevert := domain.AdjustmentAutoRevert
	linked, _ := store.FindMany(context.Background(), port.CampaignFilter{
		LinkedCampaignID: &resp.CampaignID, Type: &autoRevert,
	})
	require.Len(t, linked, 1)
	require.NotNil(t, linked[0].ScheduledAt)
	assert.True(t, linked[0].ScheduledAt.Equal(revertAt))
}

func TestCancelCascadesToAutoRevert(t *testing.T) {
	store := porttest.NewStore()
	svc := newTestService(store, &porttest.Gateway{}, &porttest.Billing{Active: true})

	c := store.Seed(domain.Campaign{Shop: shop, Status: domain.StatusScheduled, Type: domain.AdjustmentPercentage})
	ar := store.Seed(domain.Campaign{
		Shop: shop, Status: domain.StatusScheduled,
		Type: domain.AdjustmentAutoRevert, LinkedCampaignID: &c.ID,
	})

	require.NoError(t, svc.CancelCampaign(context.Background(), shop, c.ID))

	got, _ := store.FindByID(context.Background(), c.ID)
	assert.Equal(t, domain.StatusCanceled, got.Status)
	gotAR, _ := store.FindByID(context.Background(), ar.ID)
	assert.Equal(t, domain.StatusCanceled, gotAR.Status)
}

func TestCancelRejectsNonScheduled(t *testing.T) {
	store := porttest.NewStore()
	svc := newTestService(store, &porttest.Gateway{}, &porttest.Billing{Active: true})

	c := store.Seed(domain.Campaign{Shop: shop, Status: domain.StatusCompleted})
	err := svc.CancelCampaign(context.Background(), shop, c.ID)
	assert.ErrorIs(t, err, port.ErrNotCancelable)
}

func TestPreviewReportsInvalidRows(t *testing.T) {
	store := porttest.NewStore()
	gw := &porttest.Gateway{Products: []domain.Product{
		{ID: "p1", Title: "Cheap", Variants: []domain.Variant{
			{ID: "v1", Title: "A", Price: "3.00"},
			{ID: "v2", Title: "B", Price: "30.00"},
		}},
	}}
	svc := newTestService(store, gw, &porttest.Billing{Active: true})

	rows, err := svc.Preview(context.Background(), shop, domain.TargetFilter{Type: domain.FilterAll}, domain.Adjustment{
		Type:     domain.AdjustmentFixedAmount,
		Strategy: domain.StrategyDecrease,
		Value:    5,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Valid)
	assert.Equal(t, "Resulting price must be greater than 0", rows[0].Reason)
	assert.True(t, rows[1].Valid)
	assert.Equal(t, 25.0, rows[1].NewPrice)
}
