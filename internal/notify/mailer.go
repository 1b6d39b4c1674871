package notify

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/attendly/backend/config"
)

// Mailer sends participant notification emails over SMTP.
// An unconfigured mailer (empty SMTP host) silently no-ops.
type Mailer struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewMailer creates an SMTP mailer from config.
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mailer{cfg: cfg, logger: logger}
	if cfg.SMTPHost != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		logger.Warn("SMTP not configured, participant emails disabled")
	}
	return m
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m.dialer != nil
}

// SendAttendanceConfirmation emails the participant that their check-in was
// recorded. Returns nil without sending when SMTP is unconfigured.
func (m *Mailer) SendAttendanceConfirmation(to, participantName, eventName string, confirmedAt time.Time) error {
	subject := "Attendance Confirmed - " + eventName
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Attendance Confirmed</h2>
  <p>Hello %s,</p>
  <p>Your attendance has been successfully confirmed for:</p>
  <p><strong>Event:</strong> %s<br><strong>Confirmed at:</strong> %s</p>
  <p>Thank you for attending!</p>
</div>`, participantName, eventName, confirmedAt.Local().Format("1/2/2006, 3:04:05 PM"))
	return m.send(to, subject, html)
}

// SendEventReminder emails the participant about an upcoming event.
func (m *Mailer) SendEventReminder(to, participantName, eventName string, scheduledTime time.Time) error {
	subject := "Event Reminder - " + eventName
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Event Reminder</h2>
  <p>Hello %s,</p>
  <p>This is a reminder for the upcoming event:</p>
  <p><strong>Event:</strong> %s<br><strong>Scheduled for:</strong> %s</p>
  <p>Don't forget to confirm your attendance when the event starts!</p>
</div>`, participantName, eventName, scheduledTime.Local().Format("1/2/2006, 3:04:05 PM"))
	return m.send(to, subject, html)
}

func (m *Mailer) send(to, subject, html string) error {
	if m.dialer == nil {
		m.logger.Debug("email skipped, SMTP not configured", zap.String("to", to))
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromAddress, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
