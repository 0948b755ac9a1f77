package email

import (
	"context"
	"errors"

	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`       // Email address of the recipient
	Subject  string `json:"subject"`       // Subject of the email
	BodyHTML string `json:"body_html"`     // HTML body of the email
	Tag      string `json:"tag,omitempty"` // Optional
}

// Validate checks the recipient address and requires a subject and a body.
func (p SendEmailParams) Validate() error {
	err := validator.Apply(
		validator.Required("send_to", p.SendTo),
		validator.ValidEmail("send_to", p.SendTo),
		validator.Required("subject", p.Subject),
		validator.Required("body_html", p.BodyHTML),
	)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}
