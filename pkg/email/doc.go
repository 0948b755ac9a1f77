// Package email sends transactional mail through Postmark and turns two-factor
// lifecycle events into security notices.
//
// EmailSender is implemented by the Postmark client and by DevSender, which
// writes messages to disk for local development. NewSender picks between the
// two based on the configured tokens.
//
// Notifier plugs into twofactor.Service as a twofactor.Notifier and mails the
// account holder whenever two-factor authentication is enabled or disabled, or
// its recovery codes are regenerated or run out:
//
//	sender, err := email.NewSender(cfg)
//	if err != nil {
//		return err
//	}
//	svc, err := twofactor.NewService(store, tfCfg,
//		twofactor.WithNotifier(email.NewNotifier(sender, twofactor.MustMessages(), email.WithAppName(tfCfg.AppName))),
//	)
//
// The recipient defaults to the record label when it is an email address; use
// WithRecipient to look it up elsewhere.
package email
