package httpguard

import "errors"

var (
	ErrNoSecret         = errors.New("httpguard: no cookie secret configured")
	ErrSecretTooShort   = errors.New("httpguard: cookie secret too short")
	ErrInvalidSignature = errors.New("httpguard: invalid cookie signature")
	ErrInvalidFormat    = errors.New("httpguard: invalid cookie format")
	ErrCookieNotFound   = errors.New("httpguard: cookie not found")
	ErrMissingService   = errors.New("httpguard: two-factor service is required")
	ErrMissingPrincipal = errors.New("httpguard: principal resolver is required")
)
