package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/models"
)

// Store is the slice of persistence the confirmation service needs. The
// implementation must back InsertAttendance with an atomic unique-constrained
// insert; that constraint is the sole guard against concurrent double check-in.
type Store interface {
	GetEventByAccessCode(ctx context.Context, code string) (*models.Event, error)
	UpsertParticipant(ctx context.Context, name, email, phone string) (*models.Participant, error)
	InsertAttendance(ctx context.Context, eventID, participantID uuid.UUID) (*models.Attendance, bool, error)
}

// Notifier delivers the attendance confirmation to the participant.
// Delivery is best-effort; errors never fail the confirmation.
type Notifier interface {
	SendAttendanceConfirmation(ctx context.Context, n Notification) error
}

// Notification is the payload handed to the Notifier.
type Notification struct {
	To              string
	ParticipantName string
	EventID         uuid.UUID
	EventName       string
	ConfirmedAt     time.Time
}

// ConfirmInput is a check-in request.
type ConfirmInput struct {
	AccessCode       string
	ParticipantName  string
	ParticipantEmail string
	ParticipantPhone string
}

// Confirmation is a successful check-in with display fields denormalized.
type Confirmation struct {
	AttendanceID     uuid.UUID `json:"attendance_id"`
	EventID          uuid.UUID `json:"event_id"`
	EventName        string    `json:"event_name"`
	ParticipantID    uuid.UUID `json:"participant_id"`
	ParticipantName  string    `json:"participant_name"`
	ParticipantEmail string    `json:"participant_email"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

// Service validates and records check-ins exactly once per (event, participant).
type Service struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a confirmation service. notifier may be nil when
// notifications are unconfigured.
func NewService(store Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Confirm records a participant's attendance at the event carrying accessCode.
//
// The event must be OPEN according to its persisted state; the time window is
// deliberately not recomputed here, so check-ins are accepted exactly within
// the scheduler's observed window. The participant upsert happens only after
// the state check passes, so a rejected check-in leaves no participant row
// behind. Returns ErrEventNotFound, *NotOpenError or *AlreadyConfirmedError
// as distinct outcomes.
func (s *Service) Confirm(ctx context.Context, in ConfirmInput) (*Confirmation, error) {
	event, err := s.store.GetEventByAccessCode(ctx, in.AccessCode)
	if err != nil {
		return nil, err
	}
	if event.State != models.EventStateOpen {
		return nil, &NotOpenError{State: event.State}
	}

	participant, err := s.store.UpsertParticipant(ctx, in.ParticipantName, in.ParticipantEmail, in.ParticipantPhone)
	if err != nil {
		return nil, err
	}

	att, created, err := s.store.InsertAttendance(ctx, event.ID, participant.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, &AlreadyConfirmedError{ConfirmedAt: att.ConfirmedAt}
	}

	if s.notifier != nil {
		n := Notification{
			To:              participant.Email,
			ParticipantName: participant.Name,
			EventID:         event.ID,
			EventName:       event.Name,
			ConfirmedAt:     att.ConfirmedAt,
		}
		if err := s.notifier.SendAttendanceConfirmation(ctx, n); err != nil {
			// Attendance is already recorded; notification delivery is
			// best-effort and never surfaces as a confirmation failure.
			s.logger.Warn("attendance confirmation notification failed",
				zap.Error(err),
				zap.String("recipient", participant.Email),
				zap.String("event_id", event.ID.String()),
			)
		}
	}

	return &Confirmation{
		AttendanceID:     att.ID,
		EventID:          event.ID,
		EventName:        event.Name,
		ParticipantID:    participant.ID,
		ParticipantName:  participant.Name,
		ParticipantEmail: participant.Email,
		ConfirmedAt:      att.ConfirmedAt,
	}, nil
}
