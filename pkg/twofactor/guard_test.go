package twofactor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

type anonymous struct{}

func TestGuardDecide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		attempt func(t *testing.T, f *fixture) twofactor.Attempt
		state   twofactor.DecisionState
		path    twofactor.DecisionPath
	}{
		{
			name:    "principal without two-factor support",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: anonymous{}} },
			state:   twofactor.StateGranted,
			path:    twofactor.PathNotTwoFactor,
		},
		{
			name:    "two-factor not enabled",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: user{id: "2"}} },
			state:   twofactor.StateGranted,
			path:    twofactor.PathNotTwoFactor,
		},
		{
			name:    "no code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: alice} },
			state:   twofactor.StateDenied,
			path:    twofactor.PathCodeRequired,
		},
		{
			name:    "malformed code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: alice, Code: "71-63-47"} },
			state:   twofactor.StateDenied,
			path:    twofactor.PathInvalidCode,
		},
		{
			name:    "too short code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: alice, Code: "71634"} },
			state:   twofactor.StateDenied,
			path:    twofactor.PathInvalidCode,
		},
		{
			name:    "too long code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: alice, Code: "7163470"} },
			state:   twofactor.StateDenied,
			path:    twofactor.PathInvalidCode,
		},
		{
			name:    "wrong code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: alice, Code: "000000"} },
			state:   twofactor.StateDenied,
			path:    twofactor.PathInvalidCode,
		},
		{
			name:    "valid code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt { return twofactor.Attempt{Principal: alice, Code: "716347"} },
			state:   twofactor.StateGranted,
			path:    twofactor.PathCode,
		},
		{
			name: "unknown device falls back to code",
			attempt: func(*testing.T, *fixture) twofactor.Attempt {
				return twofactor.Attempt{Principal: alice, DeviceToken: "unknown"}
			},
			state: twofactor.StateDenied,
			path:  twofactor.PathCodeRequired,
		},
		{
			name: "trusted device",
			attempt: func(t *testing.T, f *fixture) twofactor.Attempt {
				token, _, err := f.svc.AddSafeDevice(ctx, alice.TwoFactorOwner(), "10.0.0.1")
				require.NoError(t, err)
				return twofactor.Attempt{Principal: alice, DeviceToken: token}
			},
			state: twofactor.StateGranted,
			path:  twofactor.PathSafeDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.seed(t, alice)
			guard := twofactor.NewGuard(f.svc)

			d, err := guard.Decide(ctx, tt.attempt(t, f))
			require.NoError(t, err)
			assert.Equal(t, tt.state, d.State)
			assert.Equal(t, tt.path, d.Path)
			assert.False(t, d.RememberDevice())
		})
	}
}

func TestGuardRemembersDevice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, alice)
	guard := twofactor.NewGuard(f.svc)

	d, err := guard.Decide(ctx, twofactor.Attempt{
		Principal:      alice,
		Code:           "716347",
		RememberDevice: true,
		IP:             "10.0.0.1",
	})
	require.NoError(t, err)
	require.True(t, d.Granted())
	require.True(t, d.RememberDevice())
	assert.Equal(t, 14*24*time.Hour, d.DeviceMaxAge)

	f.clock.Advance(time.Hour)
	d, err = guard.Decide(ctx, twofactor.Attempt{Principal: alice, DeviceToken: d.DeviceToken})
	require.NoError(t, err)
	assert.Equal(t, twofactor.PathSafeDevice, d.Path)

	rec, err := f.svc.Record(ctx, alice.TwoFactorOwner())
	require.NoError(t, err)
	require.Len(t, rec.SafeDevices, 1)
	assert.Equal(t, "10.0.0.1", rec.SafeDevices[0].IP)
}

func TestGuardIgnoresRememberWhenDevicesDisabled(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(c *twofactor.Config) { c.SafeDevicesEnabled = false })
	f.seed(t, alice)

	d, err := twofactor.NewGuard(f.svc).Decide(context.Background(), twofactor.Attempt{
		Principal:      alice,
		Code:           "716347",
		RememberDevice: true,
	})
	require.NoError(t, err)
	assert.True(t, d.Granted())
	assert.False(t, d.RememberDevice())
}

func TestGuardAcceptsRecoveryCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, alice)
	guard := twofactor.NewGuard(f.svc)

	codes, err := f.svc.RecoveryCodes(ctx, alice.TwoFactorOwner())
	require.NoError(t, err)

	assert.True(t, guard.Validate(ctx, twofactor.Attempt{Principal: alice, Code: codes[0].Code}))
	assert.False(t, guard.Validate(ctx, twofactor.Attempt{Principal: alice, Code: codes[0].Code}))
}

func TestGuardFailsClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	store := &MockStore{}
	store.On("Load", mock.Anything, alice.TwoFactorOwner()).Return(nil, dbErr)
	svc, err := twofactor.NewService(store, twofactor.DefaultConfig())
	require.NoError(t, err)
	guard := twofactor.NewGuard(svc)

	attempt := twofactor.Attempt{Principal: alice, Code: "716347"}
	d, err := guard.Decide(ctx, attempt)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, twofactor.StateDenied, d.State)
	assert.Equal(t, twofactor.PathError, d.Path)

	assert.False(t, guard.Validate(ctx, attempt))

	_, err = guard.ValidateOrFail(ctx, attempt)
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, validator.IsValidationError(err))
}

func TestGuardValidateOrFail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, alice)
	guard := twofactor.NewGuard(f.svc)

	_, err := guard.ValidateOrFail(ctx, twofactor.Attempt{Principal: alice, Code: "000000"})
	require.True(t, validator.IsValidationError(err))
	errs := validator.ExtractValidationErrors(err)
	assert.Equal(t, "The Code is invalid or has expired.", errs.First("2fa_code"))
	assert.Equal(t, twofactor.MsgInvalidCode, errs.GetErrors("2fa_code")[0].TranslationKey)

	_, err = guard.ValidateOrFail(ctx, twofactor.Attempt{Principal: alice, Lang: "tr"})
	errs = validator.ExtractValidationErrors(err)
	assert.Equal(t, "İki Faktörlü Kimlik Doğrulama gereklidir.", errs.First("2fa_code"))
	assert.Equal(t, twofactor.MsgRequired, errs.GetErrors("2fa_code")[0].TranslationKey)

	trCtx := i18n.SetLocale(ctx, "tr")
	_, err = guard.ValidateOrFail(trCtx, twofactor.Attempt{Principal: alice, Code: "000000"})
	assert.Equal(t, "Kod geçersiz veya süresi dolmuş.", validator.ExtractValidationErrors(err).First("2fa_code"))

	d, err := guard.ValidateOrFail(ctx, twofactor.Attempt{Principal: alice, Code: "716347"})
	require.NoError(t, err)
	assert.True(t, d.Granted())
}

func TestWellFormedCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     string
		recovery bool
		want     bool
	}{
		{name: "totp code", code: "716347", recovery: true, want: true},
		{name: "recovery code", code: "AB12CD34", recovery: true, want: true},
		{name: "empty", code: "", recovery: true, want: false},
		{name: "too short", code: "71634", recovery: true, want: false},
		{name: "too long", code: "7163470", recovery: true, want: false},
		{name: "inner space", code: "716 347", recovery: true, want: false},
		{name: "non ascii", code: "çode12", recovery: true, want: false},
		{name: "recovery code too long", code: "AB12CD34E", recovery: true, want: false},
		{name: "lowercase recovery code", code: "ab12cd34", recovery: true, want: false},
		{name: "recovery code with recovery off", code: "AB12CD34", recovery: false, want: false},
		{name: "totp code with recovery off", code: "716347", recovery: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, func(c *twofactor.Config) { c.RecoveryEnabled = tt.recovery })
			assert.Equal(t, tt.want, f.svc.WellFormedCode(tt.code))
		})
	}
}

func TestWellFormedCodeFollowsConfig(t *testing.T) {
	t.Parallel()
	f := newFixture(t, func(c *twofactor.Config) {
		c.Digits = 8
		c.RecoveryLength = 10
	})

	assert.True(t, f.svc.WellFormedCode("71634712"))
	assert.False(t, f.svc.WellFormedCode("716347"))
	assert.True(t, f.svc.WellFormedCode("AB12CD34EF"))
	assert.False(t, f.svc.WellFormedCode("AB12CD34"))
}

func TestCodeRule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, alice)

	err := validator.Apply(twofactor.CodeRule(ctx, f.svc, alice, "code", "000000"))
	require.Error(t, err)
	assert.Equal(t, "The Code is invalid or has expired.", validator.ExtractValidationErrors(err).First("code"))

	assert.NoError(t, validator.Apply(twofactor.CodeRule(ctx, f.svc, alice, "code", "716347")))
	assert.Error(t, validator.Apply(twofactor.CodeRule(ctx, f.svc, alice, "code", "716347")), "codes are consumed")
	assert.Error(t, validator.Apply(twofactor.CodeRule(ctx, f.svc, anonymous{}, "code", "716347")))
}
