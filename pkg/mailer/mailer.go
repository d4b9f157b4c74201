package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

// Mailer delivers store order alerts. Delivery is best-effort; callers must
// treat a send failure as non-fatal.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTP builds a mailer from SMTP configuration.
func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send delivers one message. The context is accepted for interface symmetry;
// net/smtp does not support cancellation mid-dial.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.DefaultFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.DefaultFrom, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes the message to the structured log instead of sending it.
// Used when no SMTP relay is configured.
type LogMailer struct {
	logg *logger.Logger
}

// NewLog builds a log-only mailer.
func NewLog(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

// Send records the message in the log.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"mail_to":      to,
			"mail_subject": subject,
		})
		m.logg.Info(ctx, "mail suppressed, smtp not configured")
	}
	return nil
}
