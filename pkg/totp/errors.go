package totp

import "errors"

var (
	ErrFailedToGenerateSecretKey    = errors.New("failed to generate TOTP secret key")
	ErrInvalidSecretLength          = errors.New("invalid secret length, must be between 16 and 32 bytes")
	ErrMissingSecret                = errors.New("missing secret")
	ErrInvalidSecret                = errors.New("invalid secret")
	ErrMissingLabel                 = errors.New("missing label")
	ErrMissingIssuer                = errors.New("missing issuer")
	ErrInvalidOTP                   = errors.New("invalid OTP format")
	ErrInvalidDigits                = errors.New("invalid digits, must be between 6 and 10")
	ErrInvalidPeriod                = errors.New("invalid period, must be greater than 0")
	ErrInvalidWindow                = errors.New("invalid window, must not be negative")
	ErrUnsupportedAlgorithm         = errors.New("unsupported HMAC algorithm")
	ErrInvalidTimestamp             = errors.New("invalid timestamp")
	ErrInvalidRecoveryCodeCount     = errors.New("invalid recovery code count, must be greater than 0")
	ErrInvalidRecoveryCodeLength    = errors.New("invalid recovery code length, must be greater than 0")
	ErrFailedToGenerateRecoveryCode = errors.New("failed to generate recovery code")
	ErrFailedToGenerateRandomString = errors.New("failed to generate random string")
)
