// Package worker consumes queued notification jobs and delivers them over SMTP.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attendly/backend/internal/emaillog"
	"github.com/attendly/backend/internal/models"
	"github.com/attendly/backend/internal/notify"
	"github.com/attendly/backend/pkg/queue"
)

// EmailWorker drains the email queue and records each delivery attempt.
type EmailWorker struct {
	queue  *queue.Queue
	mailer *notify.Mailer
	logs   *emaillog.Repository
	logger *zap.Logger
}

// NewEmailWorker creates an email worker.
func NewEmailWorker(q *queue.Queue, mailer *notify.Mailer, logs *emaillog.Repository, logger *zap.Logger) *EmailWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailWorker{queue: q, mailer: mailer, logs: logs, logger: logger}
}

// Run processes jobs until ctx is cancelled. Failed sends are requeued with
// backoff up to the queue's retry limit.
func (w *EmailWorker) Run(ctx context.Context) {
	w.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("email worker stopped")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("email worker stopped")
				return
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := w.process(ctx, job); err != nil {
			w.logger.Error("email job failed",
				zap.Error(err),
				zap.String("job_id", job.ID),
				zap.Int("attempt", job.Attempt),
			)
			time.Sleep(queue.RetryBackoff)
			if rerr := w.queue.Retry(ctx, job); rerr != nil {
				w.logger.Error("requeue failed", zap.Error(rerr), zap.String("job_id", job.ID))
			}
		}
	}
}

func (w *EmailWorker) process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		w.logger.Warn("skipping unknown job type", zap.String("type", string(job.Type)), zap.String("job_id", job.ID))
		return nil
	}
	var p queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		// Malformed payloads can never succeed, drop without retrying.
		w.logger.Error("dropping malformed email job", zap.Error(err), zap.String("job_id", job.ID))
		return nil
	}

	var subject string
	var sendErr error
	switch p.EmailType {
	case queue.EmailTypeAttendanceConfirmation:
		subject = "Attendance Confirmed - " + p.EventName
		sendErr = w.mailer.SendAttendanceConfirmation(p.RecipientEmail, p.ParticipantName, p.EventName, p.ConfirmedAt)
	case queue.EmailTypeEventReminder:
		subject = "Event Reminder - " + p.EventName
		sendErr = w.mailer.SendEventReminder(p.RecipientEmail, p.ParticipantName, p.EventName, p.ScheduledTime)
	default:
		w.logger.Warn("dropping unknown email type", zap.String("email_type", p.EmailType), zap.String("job_id", job.ID))
		return nil
	}

	w.record(ctx, &p, subject, sendErr)
	if sendErr != nil {
		return sendErr
	}
	w.logger.Info("email sent",
		zap.String("email_type", p.EmailType),
		zap.String("recipient", p.RecipientEmail),
		zap.String("event_id", p.EventID.String()),
	)
	return nil
}

func (w *EmailWorker) record(ctx context.Context, p *queue.EmailPayload, subject string, sendErr error) {
	el := models.EmailLog{
		EmailType:      p.EmailType,
		RecipientEmail: p.RecipientEmail,
		Subject:        subject,
	}
	if p.EventID != uuid.Nil {
		id := p.EventID
		el.EventID = &id
	}
	if sendErr != nil {
		el.Status = models.EmailLogStatusFailed
		el.ErrorMessage = sendErr.Error()
	} else {
		el.Status = models.EmailLogStatusSent
		now := time.Now()
		el.SentAt = &now
	}
	if err := w.logs.Create(ctx, &el); err != nil {
		w.logger.Error("record email log failed", zap.Error(err), zap.String("recipient", p.RecipientEmail))
	}
}
