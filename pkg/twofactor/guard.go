package twofactor

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// DecisionState is the outcome of an authentication attempt.
type DecisionState string

const (
	StateGranted DecisionState = "granted"
	StateDenied  DecisionState = "denied"
)

// DecisionPath tells which rule produced the decision.
type DecisionPath string

const (
	PathNotTwoFactor DecisionPath = "not_two_factor"
	PathSafeDevice   DecisionPath = "safe_device"
	PathCode         DecisionPath = "code"
	PathCodeRequired DecisionPath = "code_required"
	PathInvalidCode  DecisionPath = "invalid_code"
	PathError        DecisionPath = "error"
)

// Attempt is what a login flow knows after the credentials were accepted.
type Attempt struct {
	Principal      any    // The authenticated account; see Authenticatable
	Code           string // TOTP or recovery code, empty when none was submitted
	DeviceToken    string // Token presented by a previously remembered device
	RememberDevice bool   // The user asked to remember this device
	IP             string
	Lang           string // Language for messages; the context locale is used when empty
}

// Decision is the result of Guard.Decide.
// DeviceToken and DeviceMaxAge are set when a new safe device was registered.
type Decision struct {
	State        DecisionState `json:"state"`
	Path         DecisionPath  `json:"path"`
	DeviceToken  string        `json:"-"`
	DeviceMaxAge time.Duration `json:"-"`
}

func (d Decision) Granted() bool { return d.State == StateGranted }

// RememberDevice reports whether the client should store DeviceToken.
func (d Decision) RememberDevice() bool { return d.DeviceToken != "" }

func granted(path DecisionPath) Decision { return Decision{State: StateGranted, Path: path} }
func denied(path DecisionPath) Decision  { return Decision{State: StateDenied, Path: path} }

// Guard decides whether an authenticated principal also passes the second factor.
// Storage failures deny the attempt and are returned with the decision.
type Guard struct {
	svc    *Service
	logger *slog.Logger
}

func NewGuard(svc *Service) *Guard {
	return &Guard{svc: svc, logger: svc.logger.With(logger.Component("twofactor.guard"))}
}

// Decide runs the decision rules in order:
// principals without two-factor pass; a trusted safe device passes; otherwise a
// well-formed code must validate, optionally registering the device.
func (g *Guard) Decide(ctx context.Context, a Attempt) (Decision, error) {
	d, owner, err := g.decide(ctx, a)

	g.svc.metrics.decision(d.State, d.Path)
	attrs := []any{
		logger.Outcome(string(d.State)),
		logger.Reason(string(d.Path)),
		logger.IP(a.IP),
	}
	if !owner.IsZero() {
		attrs = append(attrs, logger.Owner(owner.String()))
	}
	switch {
	case err != nil:
		g.logger.ErrorContext(ctx, "two-factor decision failed", append(attrs, logger.Error(err))...)
	case d.Granted():
		g.logger.DebugContext(ctx, "two-factor decision", attrs...)
	default:
		g.logger.InfoContext(ctx, "two-factor decision", attrs...)
	}
	return d, err
}

func (g *Guard) decide(ctx context.Context, a Attempt) (Decision, Owner, error) {
	acct, ok := g.svc.Account(a.Principal)
	if !ok {
		return granted(PathNotTwoFactor), Owner{}, nil
	}
	owner := acct.Owner()

	enabled, err := acct.HasTwoFactorEnabled(ctx)
	if err != nil {
		return denied(PathError), owner, err
	}
	if !enabled {
		return granted(PathNotTwoFactor), owner, nil
	}

	if a.DeviceToken != "" {
		trusted, err := acct.IsSafeDevice(ctx, a.DeviceToken)
		if err != nil {
			return denied(PathError), owner, err
		}
		if trusted {
			return granted(PathSafeDevice), owner, nil
		}
	}

	if a.Code == "" {
		return denied(PathCodeRequired), owner, nil
	}
	if !g.svc.WellFormedCode(a.Code) {
		return denied(PathInvalidCode), owner, nil
	}

	valid, err := acct.ValidateTwoFactorCode(ctx, a.Code)
	if err != nil {
		return denied(PathError), owner, err
	}
	if !valid {
		return denied(PathInvalidCode), owner, nil
	}

	d := granted(PathCode)
	if a.RememberDevice && g.svc.cfg.SafeDevicesEnabled {
		token, maxAge, err := acct.AddSafeDevice(ctx, a.IP)
		if err != nil {
			return denied(PathError), owner, err
		}
		d.DeviceToken, d.DeviceMaxAge = token, maxAge
	}
	return d, owner, nil
}

// Validate is Decide reduced to a boolean. Errors count as denial.
func (g *Guard) Validate(ctx context.Context, a Attempt) bool {
	d, err := g.Decide(ctx, a)
	return err == nil && d.Granted()
}

// ValidateOrFail runs Decide and turns a denial into validator.ValidationErrors
// addressed at the configured input name. Storage errors are returned as they are.
func (g *Guard) ValidateOrFail(ctx context.Context, a Attempt) (Decision, error) {
	d, err := g.Decide(ctx, a)
	if err != nil || d.Granted() {
		return d, err
	}

	key := MsgInvalidCode
	if d.Path == PathCodeRequired {
		key = MsgRequired
	}
	lang := a.Lang
	if lang == "" {
		lang = i18n.GetLocale(ctx)
	}
	return d, validator.Single(g.svc.cfg.Input, g.svc.Message(lang, key), key, nil)
}

// WellFormedCode reports whether code has the shape of a TOTP code (Config.Digits
// decimal digits) or, with recovery on, of a recovery code (Config.RecoveryLength
// uppercase letters and digits).
func (s *Service) WellFormedCode(code string) bool {
	if validator.Apply(validator.ValidOTPCode(s.cfg.Input, code, s.cfg.Digits)) == nil {
		return true
	}
	return s.cfg.RecoveryEnabled &&
		validator.Apply(validator.ValidRecoveryCode(s.cfg.Input, code, s.cfg.RecoveryLength)) == nil
}
