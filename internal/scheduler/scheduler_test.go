package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/backend/internal/clock"
	"github.com/attendly/backend/internal/models"
)

type fakeStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event

	failSetState map[uuid.UUID]error
	transitions  []string
}

func newFakeStore(events ...*models.Event) *fakeStore {
	s := &fakeStore{
		events:       make(map[uuid.UUID]*models.Event),
		failSetState: make(map[uuid.UUID]error),
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *fakeStore) ListDueToOpen(_ context.Context, now time.Time) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		if e.State == models.EventStateClosed && !e.ScheduledTime.After(now) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) ListOpen(_ context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		if e.State == models.EventStateOpen {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeStore) SetState(_ context.Context, id uuid.UUID, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSetState[id]; err != nil {
		return err
	}
	e, ok := s.events[id]
	if !ok || e.State != from {
		return nil // conditional update matched no row
	}
	e.State = to
	s.transitions = append(s.transitions, from+"->"+to)
	return nil
}

func (s *fakeStore) state(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id].State
}

func event(scheduled time.Time, durationMin int, state string) *models.Event {
	return &models.Event{
		ID:              uuid.New(),
		Name:            "standup",
		ScheduledTime:   scheduled,
		DurationMinutes: durationMin,
		State:           state,
	}
}

func TestSweep_OpensEventInsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)
	e := event(now.Add(-10*time.Minute), 30, models.EventStateClosed)
	store := newFakeStore(e)

	New(store, clock.NewFixed(now), time.Minute, nil).Sweep(context.Background())

	assert.Equal(t, models.EventStateOpen, store.state(e.ID))
}

func TestSweep_NeverOpensMissedWindow(t *testing.T) {
	// Window fully elapsed before the first sweep ever ran (e.g. the
	// process was down): stays CLOSED forever.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := event(now.Add(-24*time.Hour), 5, models.EventStateClosed)
	store := newFakeStore(e)
	s := New(store, clock.NewFixed(now), time.Minute, nil)

	s.Sweep(context.Background())
	s.Sweep(context.Background())

	assert.Equal(t, models.EventStateClosed, store.state(e.ID))
	assert.Empty(t, store.transitions)
}

func TestSweep_ClosesExpiredEvent(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 31, 0, 0, time.UTC)
	e := event(now.Add(-31*time.Minute), 30, models.EventStateOpen)
	store := newFakeStore(e)

	New(store, clock.NewFixed(now), time.Minute, nil).Sweep(context.Background())

	assert.Equal(t, models.EventStateClosed, store.state(e.ID))
}

func TestSweep_LeavesOpenEventInsideWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 20, 0, 0, time.UTC)
	e := event(now.Add(-20*time.Minute), 30, models.EventStateOpen)
	store := newFakeStore(e)

	New(store, clock.NewFixed(now), time.Minute, nil).Sweep(context.Background())

	assert.Equal(t, models.EventStateOpen, store.state(e.ID))
	assert.Empty(t, store.transitions)
}

func TestSweep_FailureOnOneEventDoesNotAbortOthers(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)
	broken := event(now.Add(-5*time.Minute), 30, models.EventStateClosed)
	healthy := event(now.Add(-5*time.Minute), 30, models.EventStateClosed)
	store := newFakeStore(broken, healthy)
	store.failSetState[broken.ID] = errors.New("connection reset")

	New(store, clock.NewFixed(now), time.Minute, nil).Sweep(context.Background())

	assert.Equal(t, models.EventStateClosed, store.state(broken.ID))
	assert.Equal(t, models.EventStateOpen, store.state(healthy.ID))

	// Next sweep retries the failed one.
	delete(store.failSetState, broken.ID)
	New(store, clock.NewFixed(now), time.Minute, nil).Sweep(context.Background())
	assert.Equal(t, models.EventStateOpen, store.state(broken.ID))
}

func TestSweep_FullLifecycle(t *testing.T) {
	// scheduled=T, duration=30: OPEN at T+10, CLOSED again at T+31.
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := event(start, 30, models.EventStateClosed)
	store := newFakeStore(e)

	New(store, clock.NewFixed(start.Add(10*time.Minute)), time.Minute, nil).Sweep(context.Background())
	require.Equal(t, models.EventStateOpen, store.state(e.ID))

	New(store, clock.NewFixed(start.Add(31*time.Minute)), time.Minute, nil).Sweep(context.Background())
	require.Equal(t, models.EventStateClosed, store.state(e.ID))

	// Once expired it is never reopened.
	New(store, clock.NewFixed(start.Add(40*time.Minute)), time.Minute, nil).Sweep(context.Background())
	assert.Equal(t, models.EventStateClosed, store.state(e.ID))

	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->CLOSED"}, store.transitions)
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)
	e := event(now.Add(-10*time.Minute), 30, models.EventStateClosed)
	store := newFakeStore(e)
	s := New(store, clock.NewFixed(now), time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return store.state(e.ID) == models.EventStateOpen
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
