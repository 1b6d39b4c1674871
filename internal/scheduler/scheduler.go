// Package scheduler keeps event state consistent with wall-clock time.
//
// Events are OPEN only while the current time is inside their scheduled
// window, but the state column is reconciled by a periodic sweep rather than
// recomputed on every read. Readers therefore see state at most one sweep
// interval stale.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/clock"
	"github.com/attendly/backend/internal/models"
)

// EventStore is the slice of event persistence the scheduler needs.
type EventStore interface {
	ListDueToOpen(ctx context.Context, now time.Time) ([]models.Event, error)
	ListOpen(ctx context.Context) ([]models.Event, error)
	SetState(ctx context.Context, id uuid.UUID, from, to string) error
}

// Scheduler periodically transitions events between CLOSED and OPEN.
type Scheduler struct {
	store    EventStore
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger
}

// New creates a scheduler. interval is the sweep cadence.
func New(store EventStore, clk clock.Clock, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{store: store, clock: clk, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// Sweeps never overlap: the loop is a single goroutine, and ticks that fire
// while a sweep is still running are dropped by the ticker.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("event state scheduler started", zap.Duration("interval", s.interval))
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("event state scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass. A failure on one event is logged and
// the pass continues; the next sweep retries. Transitions derive only from
// stored timestamps and the current time, so a crash and restart converges to
// the same state.
func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.clock.Now()

	due, err := s.store.ListDueToOpen(ctx, now)
	if err != nil {
		s.logger.Error("list events due to open failed", zap.Error(err))
	} else {
		for _, e := range due {
			// Never open an event whose window fully elapsed while it
			// was still CLOSED (e.g. the process was down): a missed
			// window is not retroactively opened.
			if now.After(e.EndTime()) {
				continue
			}
			if err := s.store.SetState(ctx, e.ID, models.EventStateClosed, models.EventStateOpen); err != nil {
				s.logger.Error("open event failed", zap.Error(err), zap.String("event_id", e.ID.String()))
				continue
			}
			s.logger.Info("event opened", zap.String("event_id", e.ID.String()), zap.String("name", e.Name))
		}
	}

	open, err := s.store.ListOpen(ctx)
	if err != nil {
		s.logger.Error("list open events failed", zap.Error(err))
		return
	}
	for _, e := range open {
		if !now.After(e.EndTime()) {
			continue
		}
		if err := s.store.SetState(ctx, e.ID, models.EventStateOpen, models.EventStateClosed); err != nil {
			s.logger.Error("close event failed", zap.Error(err), zap.String("event_id", e.ID.String()))
			continue
		}
		s.logger.Info("event closed", zap.String("event_id", e.ID.String()), zap.String("name", e.Name))
	}
}
