package providers

import (
	"context"
)

// Mailer defines the interface for transactional email. Sending is always
// best effort: a failed welcome mail never fails the registration that
// triggered it.
type Mailer interface {
	// SendWelcome sends the registration welcome email to a new patient
	SendWelcome(ctx context.Context, toEmail, fullName string) error
}
