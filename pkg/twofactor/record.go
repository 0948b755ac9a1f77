package twofactor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Record holds the two-factor state of a single owner.
// A record is enabled exactly when EnabledAt is set.
type Record struct {
	ID                       uuid.UUID     `json:"id"`
	Owner                    Owner         `json:"owner"`
	Secret                   string        `json:"-"`
	Params                   totp.Params   `json:"params"`
	Label                    string        `json:"label"`
	RecoveryCodes            RecoveryCodes `json:"-"`
	RecoveryCodesGeneratedAt *time.Time    `json:"recovery_codes_generated_at"`
	SafeDevices              SafeDevices   `json:"-"`
	EnabledAt                *time.Time    `json:"enabled_at"`
	CreatedAt                time.Time     `json:"created_at"`
	UpdatedAt                time.Time     `json:"updated_at"`
	Version                  int64         `json:"-"`
}

// NewRecord returns a disabled, unsaved record with a zero secret and the given params.
func NewRecord(owner Owner, params totp.Params, now time.Time) *Record {
	return &Record{
		ID:        uuid.New(),
		Owner:     owner,
		Params:    params.WithDefaults(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Record) IsEnabled() bool  { return r.EnabledAt != nil }
func (r *Record) IsDisabled() bool { return r.EnabledAt == nil }

// HasSecret reports whether a shared secret was ever generated for the record.
func (r *Record) HasSecret() bool { return r.Secret != "" }

// Flush resets the record to a disabled state with a new secret and params.
// Recovery codes and safe devices are dropped. The label is kept.
func (r *Record) Flush(params totp.Params, secret string, now time.Time) {
	r.Secret = secret
	r.Params = params.WithDefaults()
	r.EnabledAt = nil
	r.RecoveryCodes = nil
	r.RecoveryCodesGeneratedAt = nil
	r.SafeDevices = nil
	r.UpdatedAt = now
}

// FlushWithNewSecret is Flush with a freshly generated secret of secretLength bytes.
func (r *Record) FlushWithNewSecret(params totp.Params, secretLength int, now time.Time) error {
	secret, err := totp.GenerateSecret(secretLength)
	if err != nil {
		return errors.Join(ErrFailedToGenerate, err)
	}
	r.Flush(params, secret, now)
	return nil
}

// Enable stamps EnabledAt. Enabling an enabled record keeps the original timestamp.
func (r *Record) Enable(now time.Time) {
	if r.EnabledAt != nil {
		return
	}
	enabledAt := now
	r.EnabledAt = &enabledAt
	r.UpdatedAt = now
}

// GenerateRecoveryCodes replaces the batch with amount fresh codes of length characters.
func (r *Record) GenerateRecoveryCodes(amount, length int, now time.Time) (RecoveryCodes, error) {
	codes, err := totp.GenerateRecoveryCodes(amount, length)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	generatedAt := now
	r.RecoveryCodes = NewRecoveryCodes(codes)
	r.RecoveryCodesGeneratedAt = &generatedAt
	r.UpdatedAt = now
	return r.RecoveryCodes.Clone(), nil
}

// AddSafeDevice registers a device and keeps at most max entries.
func (r *Record) AddSafeDevice(device SafeDevice, max int) {
	r.SafeDevices = r.SafeDevices.Add(device, max)
	r.UpdatedAt = device.AddedAt
}

func (r *Record) FlushSafeDevices(now time.Time) {
	r.SafeDevices = nil
	r.UpdatedAt = now
}

// MakeCode returns the code for the period containing at, shifted by offset periods.
func (r *Record) MakeCode(at time.Time, offset int) (string, error) {
	key, err := totp.DecodeSecret(r.Secret)
	if err != nil {
		return "", err
	}
	return totp.GenerateCode(key, r.Params, at.Unix(), offset), nil
}

// ValidateCode checks code against the current and window past periods.
// It has no side effects: replay protection is applied by the Service.
func (r *Record) ValidateCode(code string, at time.Time, window int) bool {
	if code == "" || r.Secret == "" {
		return false
	}
	key, err := totp.DecodeSecret(r.Secret)
	if err != nil {
		return false
	}
	return totp.ValidateCode(key, r.Params, code, at.Unix(), window)
}

// Clone returns a deep copy safe to mutate independently.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.RecoveryCodes = r.RecoveryCodes.Clone()
	c.RecoveryCodesGeneratedAt = cloneTime(r.RecoveryCodesGeneratedAt)
	c.SafeDevices = r.SafeDevices.Clone()
	c.EnabledAt = cloneTime(r.EnabledAt)
	return &c
}

// String never includes the secret, codes or device tokens.
func (r *Record) String() string {
	return fmt.Sprintf("twofactor.Record{owner=%s enabled=%t recovery_unused=%d safe_devices=%d}",
		r.Owner, r.IsEnabled(), r.RecoveryCodes.Unused(), len(r.SafeDevices))
}

// LogValue implements slog.LogValuer with the same redaction as String.
func (r *Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", r.ID.String()),
		slog.String("owner", r.Owner.String()),
		slog.Bool("enabled", r.IsEnabled()),
		slog.Int("recovery_unused", r.RecoveryCodes.Unused()),
		slog.Int("safe_devices", len(r.SafeDevices)),
	)
}
