package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/backend/internal/models"
)

type fakeStore struct {
	mu           sync.Mutex
	events       map[string]*models.Event
	participants map[string]*models.Participant
	attendances  map[string]*models.Attendance // key eventID|participantID
	upserts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       make(map[string]*models.Event),
		participants: make(map[string]*models.Participant),
		attendances:  make(map[string]*models.Attendance),
	}
}

func (s *fakeStore) addEvent(code, state string) *models.Event {
	e := &models.Event{
		ID:         uuid.New(),
		Name:       "Team Standup",
		State:      state,
		AccessCode: code,
	}
	s.events[code] = e
	return e
}

func (s *fakeStore) GetEventByAccessCode(_ context.Context, code string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[code]
	if !ok {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *fakeStore) UpsertParticipant(_ context.Context, name, email, phone string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if p, ok := s.participants[email]; ok {
		p.Name = name
		if phone != "" {
			p.Phone = phone
		}
		return p, nil
	}
	p := &models.Participant{ID: uuid.New(), Name: name, Email: email, Phone: phone}
	s.participants[email] = p
	return p, nil
}

func (s *fakeStore) InsertAttendance(_ context.Context, eventID, participantID uuid.UUID) (*models.Attendance, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := eventID.String() + "|" + participantID.String()
	if a, ok := s.attendances[key]; ok {
		return a, false, nil
	}
	a := &models.Attendance{
		ID:            uuid.New(),
		EventID:       eventID,
		ParticipantID: participantID,
		ConfirmedAt:   time.Now(),
	}
	s.attendances[key] = a
	return a, true, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Notification
	fail bool
}

func (n *fakeNotifier) SendAttendanceConfirmation(_ context.Context, note Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, note)
	return nil
}

func confirmInput(code string) ConfirmInput {
	return ConfirmInput{
		AccessCode:       code,
		ParticipantName:  "Jane Doe",
		ParticipantEmail: "jane@example.com",
	}
}

func TestConfirmSuccess(t *testing.T) {
	store := newFakeStore()
	event := store.addEvent("ABCD1234", models.EventStateOpen)
	notifier := &fakeNotifier{}
	svc := NewService(store, notifier, nil)

	conf, err := svc.Confirm(context.Background(), confirmInput("ABCD1234"))
	require.NoError(t, err)
	assert.Equal(t, event.ID, conf.EventID)
	assert.Equal(t, "Team Standup", conf.EventName)
	assert.Equal(t, "jane@example.com", conf.ParticipantEmail)
	assert.False(t, conf.ConfirmedAt.IsZero())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "jane@example.com", notifier.sent[0].To)
	assert.Equal(t, event.ID, notifier.sent[0].EventID)
}

func TestConfirmUnknownCode(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)

	_, err := svc.Confirm(context.Background(), confirmInput("ZZZZ9999"))
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestConfirmClosedEvent(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateClosed)
	svc := NewService(store, nil, nil)

	_, err := svc.Confirm(context.Background(), confirmInput("ABCD1234"))
	var notOpen *NotOpenError
	require.ErrorAs(t, err, &notOpen)
	assert.Equal(t, models.EventStateClosed, notOpen.State)

	// Rejected check-ins must not create or touch participant rows.
	assert.Zero(t, store.upserts)
	assert.Empty(t, store.participants)
}

func TestConfirmDuplicateKeepsOriginalTimestamp(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateOpen)
	svc := NewService(store, nil, nil)

	first, err := svc.Confirm(context.Background(), confirmInput("ABCD1234"))
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), confirmInput("ABCD1234"))
	var already *AlreadyConfirmedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, first.ConfirmedAt, already.ConfirmedAt)
	assert.Len(t, store.attendances, 1)
}

func TestConfirmNotifierFailureDoesNotFailConfirmation(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateOpen)
	svc := NewService(store, &fakeNotifier{fail: true}, nil)

	conf, err := svc.Confirm(context.Background(), confirmInput("ABCD1234"))
	require.NoError(t, err)
	assert.NotNil(t, conf)
	assert.Len(t, store.attendances, 1)
}

func TestConfirmNilNotifier(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateOpen)
	svc := NewService(store, nil, nil)

	_, err := svc.Confirm(context.Background(), confirmInput("ABCD1234"))
	require.NoError(t, err)
}

func TestConfirmConcurrentDuplicatesRecordOnce(t *testing.T) {
	store := newFakeStore()
	store.addEvent("ABCD1234", models.EventStateOpen)
	svc := NewService(store, nil, nil)

	const n = 20
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Confirm(context.Background(), confirmInput("ABCD1234"))
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			var already *AlreadyConfirmedError
			require.ErrorAs(t, err, &already)
			duplicates++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, duplicates)
	assert.Len(t, store.attendances, 1)
}
