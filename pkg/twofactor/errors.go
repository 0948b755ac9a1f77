package twofactor

import "errors"

var (
	ErrInvalidConfig       = errors.New("invalid two-factor configuration")
	ErrInvalidOwner        = errors.New("invalid two-factor owner")
	ErrRecordNotFound      = errors.New("two-factor record not found")
	ErrRecordConflict      = errors.New("two-factor record was modified concurrently")
	ErrNotEnabled          = errors.New("two-factor authentication is not enabled")
	ErrMissingSecret       = errors.New("two-factor secret has not been generated")
	ErrSafeDevicesDisabled = errors.New("safe devices are disabled")
	ErrRecoveryDisabled    = errors.New("recovery codes are disabled")
	ErrNotAuthenticatable  = errors.New("principal does not support two-factor authentication")
	ErrFailedToGenerate    = errors.New("failed to generate two-factor material")
	ErrFailedToLoadRecord  = errors.New("failed to load two-factor record")
	ErrFailedToSaveRecord  = errors.New("failed to save two-factor record")
	ErrFailedToRender      = errors.New("failed to render provisioning data")
)
