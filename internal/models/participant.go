package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a person who checked in to at least one event.
// Email is the stable identity key; name and phone follow the latest check-in.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attendance records one confirmed check-in. Immutable after creation; at most
// one row exists per (event, participant) pair.
type Attendance struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}
