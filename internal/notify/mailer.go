// Package notify delivers one-time codes to users by email.
package notify

import (
	"context"
	"fmt"

	"github.com/fitfactory/backend/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// SMTPMailer sends HTML mail through an SMTP relay. A fresh client is dialed
// per message, so one SMTPMailer is safe for concurrent use.
type SMTPMailer struct {
	host   string
	from   string
	opts   []mail.Option
	logger *logrus.Logger
}

func NewSMTPMailer(cfg *config.MailConfig, logger *logrus.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	// Validate host and options up front so misconfiguration fails at startup.
	if _, err := mail.NewClient(cfg.Host, opts...); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}

	probe := mail.NewMsg()
	if err := probe.From(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid SMTP_FROM address: %w", err)
	}

	return &SMTPMailer{
		host:   cfg.Host,
		from:   cfg.From,
		opts:   opts,
		logger: logger,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.host, m.opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.WithError(err).WithField("to", to).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.WithField("to", to).Info("Email sent")
	return nil
}

// LogMailer writes mail to the log instead of sending it. Bodies, which
// carry the code, are logged at debug level only. For local development.
type LogMailer struct {
	logger *logrus.Logger
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	entry := m.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	})
	entry.Info("Email captured by log mailer")
	entry.WithField("body", htmlBody).Debug("Email body")
	return nil
}
