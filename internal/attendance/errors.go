package attendance

import (
	"errors"
	"fmt"
	"time"
)

// ErrEventNotFound means no event carries the presented access code.
var ErrEventNotFound = errors.New("event not found")

// NotOpenError means the event exists but is not accepting check-ins. It
// carries the persisted state so callers can tell the participant why.
type NotOpenError struct {
	State string
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("event is not open for attendance confirmation (state: %s)", e.State)
}

// AlreadyConfirmedError means this participant already checked in to this
// event. ConfirmedAt is the original, unchanged timestamp.
type AlreadyConfirmedError struct {
	ConfirmedAt time.Time
}

func (e *AlreadyConfirmedError) Error() string {
	return fmt.Sprintf("attendance already confirmed at %s", e.ConfirmedAt.Format(time.RFC3339))
}
