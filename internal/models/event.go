package models

import (
	"time"

	"github.com/google/uuid"
)

// Event states. An event is created CLOSED, opened by the scheduler once its
// window begins, and closed again once the window ends.
const (
	EventStateClosed = "CLOSED"
	EventStateOpen   = "OPEN"
)

// EventGroup is an ownership container for related events.
type EventGroup struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event is a single trackable event with an access code and a time window.
type Event struct {
	ID              uuid.UUID `json:"id"`
	EventGroupID    uuid.UUID `json:"event_group_id"`
	Name            string    `json:"name"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	DurationMinutes int       `json:"duration_minutes"`
	State           string    `json:"state"`
	AccessCode      string    `json:"access_code"`
	QRCodeData      string    `json:"qr_code_data,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EndTime returns the instant the event window ends.
// Pure over the event's own fields; no store access.
func (e *Event) EndTime() time.Time {
	return e.ScheduledTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// ShouldBeOpen reports whether now falls inside the event window.
func (e *Event) ShouldBeOpen(now time.Time) bool {
	return !now.Before(e.ScheduledTime) && !now.After(e.EndTime())
}
