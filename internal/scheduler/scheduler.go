// Package scheduler runs the background loop that picks up due scheduled
// campaigns and hands them to the campaign executor.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// noSubscriptionReason is the fixed failure reason recorded when the
// billing gate rejects a due campaign.
const noSubscriptionReason = "No active subscription. Please upgrade to run scheduled price changes."

// Executor is the slice of the campaign usecase the scheduler drives.
type Executor interface {
	Execute(ctx context.Context, campaignID int64) (*port.ExecutionResult, error)
}

// Scheduler owns its lifecycle explicitly: one instance per process,
// started once, stopped on shutdown. Within a tick due campaigns run
// sequentially; two concurrent scheduler processes could race on the same
// campaign, which is a documented deployment constraint.
type Scheduler struct {
	store    port.CampaignStore
	billing  port.BillingGate
	executor Executor
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped scheduler.
func New(store port.CampaignStore, billing port.BillingGate, executor Executor, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		billing:  billing,
		executor: executor,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start recovers campaigns stuck in processing from a previous crash, runs
// one immediate tick to catch campaigns that became due while the process
// was down, then polls on the configured interval until Stop or context
// cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	// A process that died mid-apply must not be treated as still running.
	reset, err := s.store.ResetProcessing(runCtx)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		cancel()
		close(s.done)
		return err
	}
	if reset > 0 {
		s.logger.Info("reset stuck campaigns back to scheduled", slog.Int64("count", reset))
	}

	s.tick(runCtx)

	go s.loop(runCtx)
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop cancels the loop and waits for it to exit. Safe to call on a
// stopped scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick queries due campaigns and executes them one at a time. Tick-level
// errors are swallowed; the next interval retries.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	scheduled := domain.StatusScheduled
	due, err := s.store.FindMany(ctx, port.CampaignFilter{Status: &scheduled, DueBefore: &now})
	if err != nil {
		s.logger.Error("due-campaign query failed", slog.Any("error", err))
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.Info("processing due campaigns", slog.Int("count", len(due)))

	for _, c := range due {
		s.runCampaign(ctx, c)
	}
}

// runCampaign applies the billing gate and executes one campaign. Failures
// are recorded on the campaign and never halt the tick for the others.
func (s *Scheduler) runCampaign(ctx context.Context, c domain.Campaign) {
	log := s.logger.With(slog.Int64("campaign_id", c.ID), slog.String("shop", c.Shop))

	active, err := s.billing.HasActiveSubscription(ctx, c.Shop)
	if err != nil {
		log.Error("subscription check failed", slog.Any("error", err))
		s.recordFailure(ctx, log, c.ID, err.Error())
		return
	}
	if !active {
		log.Warn("campaign skipped, shop has no active subscription")
		s.recordFailure(ctx, log, c.ID, noSubscriptionReason)
		return
	}

	if _, err = s.executor.Execute(ctx, c.ID); err != nil {
		log.Error("campaign failed", slog.Any("error", err))
		s.recordFailure(ctx, log, c.ID, err.Error())
		return
	}
	log.Info("campaign completed")
}

func (s *Scheduler) recordFailure(ctx context.Context, log *slog.Logger, id int64, reason string) {
	failed := domain.StatusFailed
	if err := s.store.Update(ctx, id, port.CampaignPatch{Status: &failed, FailureReason: &reason}); err != nil {
		log.Error("failed to record campaign failure", slog.Any("error", err))
	}
}
