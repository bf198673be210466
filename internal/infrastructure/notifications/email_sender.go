package notifications

import (
	"context"
	"fmt"

	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/pkg/config"
	"gopkg.in/gomail.v2"
)

const welcomeSubject = "Welcome to our dental clinic"

const welcomeBody = `<p>Dear %s,</p>
<p>Your patient record has been created. You can now book appointments with
our dentists and view your visit history through the clinic portal.</p>
<p>If you did not expect this email, please contact the clinic reception.</p>`

// SMTPMailer sends transactional email over SMTP
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// Ensure SMTPMailer implements Mailer
var _ providers.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg *config.SMTPConfig) (*SMTPMailer, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("SMTP_HOST must be set")
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

// SendWelcome sends the registration welcome email to a new patient
func (m *SMTPMailer) SendWelcome(ctx context.Context, toEmail, fullName string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", welcomeSubject)
	msg.SetBody("text/html", fmt.Sprintf(welcomeBody, fullName))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}
