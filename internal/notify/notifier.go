// Package notify delivers best-effort participant notifications.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/attendly/backend/internal/attendance"
	"github.com/attendly/backend/pkg/queue"
)

// QueueNotifier implements attendance.Notifier by enqueueing an email job for
// the worker. Confirmation never waits on SMTP.
type QueueNotifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(q *queue.Queue, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{queue: q, logger: logger}
}

// SendAttendanceConfirmation enqueues the confirmation email job.
func (n *QueueNotifier) SendAttendanceConfirmation(ctx context.Context, note attendance.Notification) error {
	return n.queue.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType:       queue.EmailTypeAttendanceConfirmation,
		EventID:         note.EventID,
		EventName:       note.EventName,
		RecipientEmail:  note.To,
		ParticipantName: note.ParticipantName,
		ConfirmedAt:     note.ConfirmedAt,
	})
}
