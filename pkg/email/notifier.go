package email

import (
	"context"
	"errors"

	"github.com/dmitrymomot/twofactor/pkg/email/templates"
	"github.com/dmitrymomot/twofactor/pkg/i18n"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// RecipientFunc resolves the address notified about owner's events.
type RecipientFunc func(ctx context.Context, owner twofactor.Owner, label string) (string, error)

// LabelRecipient uses the record label when it is an email address.
func LabelRecipient(_ context.Context, _ twofactor.Owner, label string) (string, error) {
	if validator.Apply(validator.ValidEmail("label", label)) != nil {
		return "", ErrNoRecipient
	}
	return label, nil
}

// Notifier mails a security notice for every two-factor lifecycle event.
// It implements twofactor.Notifier.
type Notifier struct {
	sender    EmailSender
	messages  *i18n.Translator
	recipient RecipientFunc
	appName   string
}

var _ twofactor.Notifier = (*Notifier)(nil)

type NotifierOption func(*Notifier)

// WithRecipient replaces LabelRecipient.
func WithRecipient(fn RecipientFunc) NotifierOption {
	return func(n *Notifier) {
		if fn != nil {
			n.recipient = fn
		}
	}
}

// WithAppName is shown in the subject line.
func WithAppName(name string) NotifierOption {
	return func(n *Notifier) { n.appName = name }
}

// NewNotifier sends through sender using messages for subjects and bodies,
// usually twofactor.Service.Messages().
func NewNotifier(sender EmailSender, messages *i18n.Translator, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		sender:    sender,
		messages:  messages,
		recipient: LabelRecipient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var eventMessages = map[twofactor.EventKind]string{
	twofactor.EventTwoFactorEnabled:       twofactor.MsgEnabled,
	twofactor.EventTwoFactorDisabled:      twofactor.MsgDisabled,
	twofactor.EventRecoveryCodesGenerated: twofactor.MsgRecoveryGenerated,
	twofactor.EventRecoveryCodesDepleted:  twofactor.MsgRecoveryDepleted,
}

// Notify sends the notice in the language of ctx (see i18n.SetLocale).
// Unknown event kinds are ignored.
func (n *Notifier) Notify(ctx context.Context, event twofactor.Event) error {
	key, ok := eventMessages[event.Kind]
	if !ok {
		return nil
	}
	to, err := n.recipient(ctx, event.Owner, event.Label)
	if err != nil {
		return err
	}

	lang := i18n.GetLocale(ctx)
	title := n.messages.T(lang, twofactor.MsgTitle)
	subject := title
	if n.appName != "" {
		subject = n.appName + ": " + title
	}

	body, err := templates.Render(ctx, templates.Notice(templates.NoticeParams{
		Lang:    lang,
		Title:   title,
		Message: n.messages.T(lang, key),
		At:      event.At,
	}))
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: body,
		Tag:      string(event.Kind),
	})
}
