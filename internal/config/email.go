package config

import (
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Mailer sends transactional email through Resend. When no API key is
// configured the mailer is a no-op, so local setups work without one.
type Mailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

func NewMailer(cfg *Config, logger *zap.Logger) *Mailer {
	m := &Mailer{from: cfg.EmailFrom, logger: logger}
	if cfg.ResendAPIKey == "" {
		logger.Info("email disabled: RESEND_API_KEY not set")
		return m
	}
	m.client = resend.NewClient(cfg.ResendAPIKey)
	return m
}

// Send delivers one HTML email. Failures are reported to the caller; callers
// treat email as best-effort and only log.
func (m *Mailer) Send(to, subject, html string) error {
	if m.client == nil {
		m.logger.Debug("email skipped", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	_, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return err
	}
	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
