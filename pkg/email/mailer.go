package email

import (
	"context"
	"fmt"
	"regexp"
)

// EmailSender delivers a single rendered email through a transport.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`        // Email address of the recipient
	Subject  string `json:"subject"`        // Subject of the email
	BodyText string `json:"body_text"`      // Plain-text body of the email
	BodyHTML string `json:"body_html"`      // HTML body of the email
	Tag      string `json:"tag,omitempty"`  // Optional transport tag for analytics
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks that the parameters can be handed to a transport.
// At least one of the two bodies must be present.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" || !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: invalid recipient address %q", ErrInvalidParams, p.SendTo)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyText == "" && p.BodyHTML == "" {
		return fmt.Errorf("%w: email body is required", ErrInvalidParams)
	}
	return nil
}
