package twofactor

import (
	"context"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// CodeRule is a validator.Rule that passes when code validates for principal.
// A validated TOTP code is consumed, so the rule must be applied once per submission.
// Principals without two-factor support, and storage errors, fail the rule.
func CodeRule(ctx context.Context, svc *Service, principal any, field, code string) validator.Rule {
	message := svc.Message(i18n.GetLocale(ctx), MsgInvalidCode)
	return validator.NewRule(field, func() bool {
		acct, ok := svc.Account(principal)
		if !ok || !svc.WellFormedCode(code) {
			return false
		}
		valid, err := acct.ValidateTwoFactorCode(ctx, code)
		return err == nil && valid
	}, message, MsgInvalidCode, nil)
}
