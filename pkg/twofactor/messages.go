package twofactor

import (
	"embed"
	"errors"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
)

// Message keys of the bundled catalogue.
const (
	MsgTitle             = "twofactor.title"
	MsgRequired          = "twofactor.required"
	MsgContinue          = "twofactor.continue"
	MsgEnable            = "twofactor.enable"
	MsgFailConfirm       = "twofactor.fail_confirm"
	MsgEnabled           = "twofactor.enabled"
	MsgDisabled          = "twofactor.disabled"
	MsgSafeDevice        = "twofactor.safe_device"
	MsgConfirm           = "twofactor.confirm"
	MsgSwitch            = "twofactor.switch"
	MsgThrottled         = "twofactor.throttled"
	MsgRecoveryUsed      = "recovery_code.used"
	MsgRecoveryDepleted  = "recovery_code.depleted"
	MsgRecoveryGenerated = "recovery_code.generated"
	MsgInvalidCode       = "validation.totp_code"
)

//go:embed locales/*.yaml
var locales embed.FS

// NewMessages loads the bundled English and Turkish messages.
func NewMessages() (*i18n.Translator, error) {
	data, err := i18n.LoadFS(locales, "locales")
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return i18n.NewTranslator(data, i18n.DefaultLanguage)
}

// MustMessages is NewMessages for package initialization; the catalogue is embedded so failure is a build defect.
func MustMessages() *i18n.Translator {
	t, err := NewMessages()
	if err != nil {
		panic(err)
	}
	return t
}
