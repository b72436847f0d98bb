package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
	"pricewave/internal/core/port/porttest"
)

type fakeExecutor struct {
	mu       sync.Mutex
	executed []int64
	failIDs  map[int64]error
}

func (f *fakeExecutor) Execute(ctx context.Context, campaignID int64) (*port.ExecutionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, campaignID)
	if err, ok := f.failIDs[campaignID]; ok {
		return nil, err
	}
	return &port.ExecutionResult{}, nil
}

func newTestScheduler(store *porttest.Store, billing *porttest.Billing, exec *fakeExecutor) *Scheduler {
	return New(store, billing, exec, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func pastTime() *time.Time {
	t := time.Now().Add(-time.Minute)
	return &t
}

func TestStartResetsStuckCampaignsBeforeTick(t *testing.T) {
	store := porttest.NewStore()
	exec := &fakeExecutor{}
	s := newTestScheduler(store, &porttest.Billing{Active: true}, exec)

	// Stuck mid-apply from a previous crash; due in the past so the
	// immediate tick must pick it up after recovery.
	c := store.Seed(domain.Campaign{
		Shop:        "demo.myshopify.com",
		Status:      domain.StatusProcessing,
		ScheduledAt: pastTime(),
	})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, []int64{c.ID}, exec.executed)
}

func TestTickExecutesOnlyDueCampaigns(t *testing.T) {
	store := porttest.NewStore()
	exec := &fakeExecutor{}
	s := newTestScheduler(store, &porttest.Billing{Active: true}, exec)

	due := store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusScheduled, ScheduledAt: pastTime()})
	future := time.Now().Add(time.Hour)
	store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusScheduled, ScheduledAt: &future})
	store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusCompleted, ScheduledAt: pastTime()})
	store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusCanceled, ScheduledAt: pastTime()})

	s.tick(context.Background())

	assert.Equal(t, []int64{due.ID}, exec.executed)
}

func TestTickFailsCampaignWithoutSubscription(t *testing.T) {
	store := porttest.NewStore()
	exec := &fakeExecutor{}
	s := newTestScheduler(store, &porttest.Billing{Active: false}, exec)

	c := store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusScheduled, ScheduledAt: pastTime()})

	s.tick(context.Background())

	assert.Empty(t, exec.executed, "executor never called for gated shops")
	got, _ := store.FindByID(context.Background(), c.ID)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, noSubscriptionReason, got.FailureReason)
}

func TestTickContinuesPastFailingCampaign(t *testing.T) {
	store := porttest.NewStore()
	a := store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusScheduled, ScheduledAt: pastTime()})
	b := store.Seed(domain.Campaign{Shop: "a", Status: domain.StatusScheduled, ScheduledAt: pastTime()})

	exec := &fakeExecutor{failIDs: map[int64]error{a.ID: errors.New("boom")}}
	s := newTestScheduler(store, &porttest.Billing{Active: true}, exec)

	s.tick(context.Background())

	assert.ElementsMatch(t, []int64{a.ID, b.ID}, exec.executed)
	gotA, _ := store.FindByID(context.Background(), a.ID)
	assert.Equal(t, domain.StatusFailed, gotA.Status)
	assert.Equal(t, "boom", gotA.FailureReason)
}

func TestStartTwiceRejected(t *testing.T) {
	store := porttest.NewStore()
	s := newTestScheduler(store, &porttest.Billing{Active: true}, &fakeExecutor{})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Error(t, s.Start(context.Background()))
}

func TestStopIsIdempotent(t *testing.T) {
	store := porttest.NewStore()
	s := newTestScheduler(store, &porttest.Billing{Active: true}, &fakeExecutor{})

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()

	// Restartable after a clean stop.
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
