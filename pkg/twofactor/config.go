package twofactor

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Config collects every tunable of the two-factor subsystem.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"twofactor"`
	Issuer  string `env:"TWOFACTOR_ISSUER"` // Falls back to AppName when empty

	Input           string `env:"TWOFACTOR_INPUT" envDefault:"2fa_code"`
	SafeDeviceInput string `env:"TWOFACTOR_SAFE_DEVICE_INPUT" envDefault:"safe_device"`
	CachePrefix     string `env:"TWOFACTOR_CACHE_PREFIX" envDefault:"2fa.code"`

	RecoveryEnabled bool `env:"TWOFACTOR_RECOVERY_ENABLED" envDefault:"true"`
	RecoveryCodes   int  `env:"TWOFACTOR_RECOVERY_CODES" envDefault:"10"`
	RecoveryLength  int  `env:"TWOFACTOR_RECOVERY_LENGTH" envDefault:"8"`

	SafeDevicesEnabled    bool   `env:"TWOFACTOR_SAFE_DEVICES_ENABLED" envDefault:"false"`
	SafeDevicesMax        int    `env:"TWOFACTOR_SAFE_DEVICES_MAX" envDefault:"3"`
	SafeDevicesExpiration int    `env:"TWOFACTOR_SAFE_DEVICES_EXPIRATION_DAYS" envDefault:"14"`
	CookieName            string `env:"TWOFACTOR_COOKIE_NAME" envDefault:"2fa_remember"`

	SecretLength int    `env:"TWOFACTOR_SECRET_LENGTH" envDefault:"20"`
	Digits       int    `env:"TWOFACTOR_DIGITS" envDefault:"6"`
	Period       int    `env:"TWOFACTOR_PERIOD" envDefault:"30"`
	Window       int    `env:"TWOFACTOR_WINDOW" envDefault:"1"`
	Algorithm    string `env:"TWOFACTOR_ALGORITHM" envDefault:"SHA1"`

	QRSize   int `env:"TWOFACTOR_QR_SIZE" envDefault:"400"`
	QRMargin int `env:"TWOFACTOR_QR_MARGIN" envDefault:"4"`

	ConfirmTimeout time.Duration `env:"TWOFACTOR_CONFIRM_TIMEOUT" envDefault:"3h"`

	EncryptionKey string `env:"TWOFACTOR_ENCRYPTION_KEY"` // Base64, 32 bytes; required by the persistent stores
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		AppName:               "twofactor",
		Input:                 "2fa_code",
		SafeDeviceInput:       "safe_device",
		CachePrefix:           "2fa.code",
		RecoveryEnabled:       true,
		RecoveryCodes:         totp.DefaultRecoveryCodeCount,
		RecoveryLength:        totp.DefaultRecoveryCodeLength,
		SafeDevicesMax:        3,
		SafeDevicesExpiration: 14,
		CookieName:            "2fa_remember",
		SecretLength:          totp.DefaultSecretLength,
		Digits:                totp.DefaultDigits,
		Period:                totp.DefaultPeriod,
		Window:                totp.DefaultWindow,
		Algorithm:             string(totp.DefaultAlgorithm),
		QRSize:                400,
		QRMargin:              4,
		ConfirmTimeout:        3 * time.Hour,
	}
}

// LoadConfig parses the environment (and a .env file, if present) into a Config and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate rejects tunables that would produce weak or unusable records.
func (c Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input name is empty"))
	}
	if c.SecretLength < totp.MinSecretLength || c.SecretLength > totp.MaxSecretLength {
		errs = append(errs, fmt.Errorf("secret length %d outside %d..%d", c.SecretLength, totp.MinSecretLength, totp.MaxSecretLength))
	}
	if err := c.TOTPParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.RecoveryEnabled && (c.RecoveryCodes < 1 || c.RecoveryLength < 1) {
		errs = append(errs, errors.New("recovery codes need a positive amount and length"))
	}
	if c.SafeDevicesEnabled && (c.SafeDevicesMax < 1 || c.SafeDevicesExpiration < 1) {
		errs = append(errs, errors.New("safe devices need a positive maximum and expiration"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// TOTPParams returns the parameters applied to new and flushed records.
func (c Config) TOTPParams() totp.Params {
	alg := totp.Algorithm(c.Algorithm)
	if parsed, err := totp.ParseAlgorithm(c.Algorithm); err == nil {
		alg = parsed
	}
	return totp.Params{
		Digits:    c.Digits,
		Period:    c.Period,
		Window:    c.Window,
		Algorithm: alg,
	}.WithDefaults()
}

// IssuerName returns Issuer, or AppName when no issuer is configured.
func (c Config) IssuerName() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	return c.AppName
}

// SafeDeviceTTL is how long a remembered device bypasses the code prompt.
func (c Config) SafeDeviceTTL() time.Duration {
	return time.Duration(c.SafeDevicesExpiration) * 24 * time.Hour
}

// RecentlyConfirmed reports whether a code confirmed at confirmedAt is still fresh at now.
func (c Config) RecentlyConfirmed(confirmedAt, now time.Time) bool {
	if confirmedAt.IsZero() {
		return false
	}
	return now.Sub(confirmedAt) < c.ConfirmTimeout
}
