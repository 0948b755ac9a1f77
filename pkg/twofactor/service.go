package twofactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/replay"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// Clock returns the current time.
type Clock func() time.Time

// errNoRecoveryMatch aborts a recovery Update without writing.
var errNoRecoveryMatch = errors.New("no matching recovery code")

// errSecretChanged aborts a confirmation whose secret was replaced meanwhile.
var errSecretChanged = errors.New("shared secret changed during confirmation")

// Service manages two-factor records: enrollment, code validation, recovery codes
// and safe devices. It is safe for concurrent use.
type Service struct {
	store    Store
	cfg      Config
	params   totp.Params
	replay   *replay.Guard
	notifier Notifier
	now      Clock
	logger   *slog.Logger
	metrics  *Metrics
	messages *i18n.Translator
}

// Option configures a Service during construction.
type Option func(*Service)

// WithReplayStore keeps used codes in store instead of process memory.
// Use a shared store (Redis) when more than one instance validates codes.
func WithReplayStore(store replay.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.replay = replay.NewGuard(store, s.cfg.CachePrefix)
		}
	}
}

// WithNotifier adds receivers of lifecycle events.
func WithNotifier(notifiers ...Notifier) Option {
	return func(s *Service) {
		s.notifier = append(Notifiers{s.notifier}, notifiers...)
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMessages replaces the bundled message catalogue.
func WithMessages(t *i18n.Translator) Option {
	return func(s *Service) {
		if t != nil {
			s.messages = t
		}
	}
}

// NewService validates cfg and wires the service. Without WithReplayStore used
// codes are remembered in process memory.
func NewService(store Store, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("store is nil"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		store:  store,
		cfg:    cfg,
		params: cfg.TOTPParams(),
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.replay == nil {
		s.replay = replay.NewGuard(replay.NewMemoryStore(0, replay.WithClock(s.now)), cfg.CachePrefix)
	}
	if s.messages == nil {
		messages, err := NewMessages()
		if err != nil {
			return nil, err
		}
		s.messages = messages
	}
	s.logger = s.logger.With(logger.Component("twofactor"))

	return s, nil
}

func (s *Service) Config() Config { return s.cfg }

func (s *Service) Issuer() string { return s.cfg.IssuerName() }

// Now reads the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Messages returns the message catalogue.
func (s *Service) Messages() *i18n.Translator { return s.messages }

// Message translates key into lang.
func (s *Service) Message(lang, key string) string {
	return s.messages.T(s.messages.Match(lang), key)
}

// Record loads the owner's record. When none is stored a disabled record without
// a secret is returned; it is not saved until Create.
func (s *Service) Record(ctx context.Context, owner Owner) (*Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	rec, err := s.store.Load(ctx, owner)
	if errors.Is(err, ErrRecordNotFound) {
		return NewRecord(owner, s.params, s.now()), nil
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	return rec, nil
}

// HasTwoFactorEnabled reports whether the owner completed enrollment.
func (s *Service) HasTwoFactorEnabled(ctx context.Context, owner Owner) (bool, error) {
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return false, err
	}
	return rec.IsEnabled(), nil
}

// Create starts (or restarts) enrollment: the record is flushed with a new secret
// and the current params, disabled, and saved with label.
func (s *Service) Create(ctx context.Context, owner Owner, label string) (*Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	now := s.now()

	rec, err := s.update(ctx, owner, func(r *Record) error {
		r.Label = label
		return r.FlushWithNewSecret(s.params, s.cfg.SecretLength, now)
	})
	if !errors.Is(err, ErrRecordNotFound) {
		return rec, err
	}

	rec = NewRecord(owner, s.params, now)
	rec.Label = label
	if err := rec.FlushWithNewSecret(s.params, s.cfg.SecretLength, now); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, errors.Join(ErrFailedToSaveRecord, err)
	}
	return rec, nil
}

// Enable activates two-factor authentication for an enrolled owner and, when
// recovery is on, issues the first batch of recovery codes. Enabling an enabled
// record is a no-op that returns its current codes.
func (s *Service) Enable(ctx context.Context, owner Owner) (RecoveryCodes, error) {
	return s.enable(ctx, owner, "")
}

// enable turns the record on. A non-empty proven secret must still be the
// record's secret when the write happens.
func (s *Service) enable(ctx context.Context, owner Owner, proven string) (RecoveryCodes, error) {
	now := s.now()
	var changed bool

	rec, err := s.update(ctx, owner, func(r *Record) error {
		changed = false
		if proven != "" && r.Secret != proven {
			return errSecretChanged
		}
		if r.IsEnabled() {
			return nil
		}
		if !r.HasSecret() {
			return ErrMissingSecret
		}
		r.Enable(now)
		changed = true
		if s.cfg.RecoveryEnabled {
			_, err := r.GenerateRecoveryCodes(s.cfg.RecoveryCodes, s.cfg.RecoveryLength, now)
			return err
		}
		return nil
	})
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrMissingSecret
	}
	if err != nil {
		return nil, err
	}

	if changed {
		s.emit(ctx, EventTwoFactorEnabled, rec)
		if s.cfg.RecoveryEnabled {
			s.emit(ctx, EventRecoveryCodesGenerated, rec)
		}
	}
	return rec.RecoveryCodes.Clone(), nil
}

// Confirm finishes enrollment when code is valid for the pending secret.
// An already enabled owner is confirmed without checking the code.
func (s *Service) Confirm(ctx context.Context, owner Owner, code string) (bool, error) {
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return false, err
	}
	if rec.IsEnabled() {
		return true, nil
	}
	if !rec.HasSecret() || !s.WellFormedCode(code) {
		return false, nil
	}

	ok, err := s.validateTOTP(ctx, rec, code)
	if err != nil || !ok {
		return false, err
	}
	_, err = s.enable(ctx, owner, rec.Secret)
	if errors.Is(err, errSecretChanged) || errors.Is(err, ErrMissingSecret) {
		s.logger.WarnContext(ctx, "two-factor confirmation discarded",
			logger.Owner(owner.String()),
			logger.Reason("secret_changed"),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Disable turns two-factor authentication off and removes the record, together
// with its secret, recovery codes and safe devices.
func (s *Service) Disable(ctx context.Context, owner Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	rec, err := s.store.Load(ctx, owner)
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrFailedToLoadRecord, err)
	}
	if err := s.store.Delete(ctx, owner); err != nil {
		return errors.Join(ErrFailedToSaveRecord, err)
	}
	s.emit(ctx, EventTwoFactorDisabled, rec)
	return nil
}

// ValidateCode accepts a TOTP code (at most once) or an unused recovery code.
// Disabled owners and malformed codes never validate.
func (s *Service) ValidateCode(ctx context.Context, owner Owner, code string) (bool, error) {
	if !s.WellFormedCode(code) {
		return false, nil
	}
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return false, err
	}
	if rec.IsDisabled() {
		return false, nil
	}

	ok, err := s.validateTOTP(ctx, rec, code)
	if err != nil || ok {
		return ok, err
	}
	if !s.cfg.RecoveryEnabled {
		return false, nil
	}
	return s.useRecoveryCode(ctx, owner, code)
}

func (s *Service) validateTOTP(ctx context.Context, rec *Record, code string) (bool, error) {
	at := s.now()
	if !rec.ValidateCode(code, at, rec.Params.Window) {
		s.metrics.validation("totp", false)
		return false, nil
	}

	err := s.replay.MarkUsed(ctx, rec.Owner.String(), code, at.Unix(), rec.Params)
	if replay.IsReplay(err) {
		s.metrics.replay()
		s.metrics.validation("totp", false)
		s.logger.WarnContext(ctx, "two-factor code rejected",
			logger.Owner(rec.Owner.String()),
			logger.Reason("replayed"),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.metrics.validation("totp", true)
	return true, nil
}

func (s *Service) useRecoveryCode(ctx context.Context, owner Owner, code string) (bool, error) {
	now := s.now()
	var remaining int

	rec, err := s.update(ctx, owner, func(r *Record) error {
		if r.IsDisabled() || !r.RecoveryCodes.MarkUsed(code, now) {
			return errNoRecoveryMatch
		}
		r.UpdatedAt = now
		remaining = r.RecoveryCodes.Unused()
		return nil
	})
	if errors.Is(err, errNoRecoveryMatch) || errors.Is(err, ErrRecordNotFound) {
		s.metrics.validation("recovery", false)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.metrics.validation("recovery", true)
	s.metrics.redeemed()
	s.logger.InfoContext(ctx, "recovery code used",
		logger.Owner(owner.String()),
		logger.Remaining(remaining),
	)
	if remaining == 0 {
		s.emit(ctx, EventRecoveryCodesDepleted, rec)
	}
	return true, nil
}

// GenerateRecoveryCodes replaces the owner's recovery codes with a fresh batch.
func (s *Service) GenerateRecoveryCodes(ctx context.Context, owner Owner) (RecoveryCodes, error) {
	if !s.cfg.RecoveryEnabled {
		return nil, ErrRecoveryDisabled
	}
	now := s.now()

	rec, err := s.update(ctx, owner, func(r *Record) error {
		if r.IsDisabled() {
			return ErrNotEnabled
		}
		_, err := r.GenerateRecoveryCodes(s.cfg.RecoveryCodes, s.cfg.RecoveryLength, now)
		return err
	})
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrNotEnabled
	}
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventRecoveryCodesGenerated, rec)
	return rec.RecoveryCodes.Clone(), nil
}

// RecoveryCodes returns the current batch, used codes included.
func (s *Service) RecoveryCodes(ctx context.Context, owner Owner) (RecoveryCodes, error) {
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return nil, err
	}
	return rec.RecoveryCodes.Clone(), nil
}

// MakeCode returns the owner's TOTP code at the given time, shifted by offset periods.
func (s *Service) MakeCode(ctx context.Context, owner Owner, at time.Time, offset int) (string, error) {
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return "", err
	}
	if !rec.HasSecret() {
		return "", ErrMissingSecret
	}
	return rec.MakeCode(at, offset)
}

// AddSafeDevice remembers a new device for the owner and returns its token and
// how long the token should be kept by the client.
func (s *Service) AddSafeDevice(ctx context.Context, owner Owner, ip string) (string, time.Duration, error) {
	if !s.cfg.SafeDevicesEnabled {
		return "", 0, ErrSafeDevicesDisabled
	}
	token, err := GenerateDeviceToken()
	if err != nil {
		return "", 0, err
	}
	now := s.now()

	_, err = s.update(ctx, owner, func(r *Record) error {
		if r.IsDisabled() {
			return ErrNotEnabled
		}
		r.AddSafeDevice(SafeDevice{Token: token, IP: ip, AddedAt: now}, s.cfg.SafeDevicesMax)
		return nil
	})
	if errors.Is(err, ErrRecordNotFound) {
		return "", 0, ErrNotEnabled
	}
	if err != nil {
		return "", 0, err
	}
	return token, s.cfg.SafeDeviceTTL(), nil
}

// IsSafeDevice reports whether token belongs to an unexpired remembered device.
// It is always false while safe devices are disabled.
func (s *Service) IsSafeDevice(ctx context.Context, owner Owner, token string) (bool, error) {
	if !s.cfg.SafeDevicesEnabled || token == "" {
		return false, nil
	}
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return false, err
	}
	if rec.IsDisabled() {
		return false, nil
	}
	return rec.SafeDevices.IsTrusted(token, s.now(), s.cfg.SafeDeviceTTL()), nil
}

// FlushSafeDevices forgets every remembered device of the owner.
func (s *Service) FlushSafeDevices(ctx context.Context, owner Owner) error {
	now := s.now()
	_, err := s.update(ctx, owner, func(r *Record) error {
		r.FlushSafeDevices(now)
		return nil
	})
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	return err
}

// Provisioning returns the enrollment view of the owner's pending or active secret.
func (s *Service) Provisioning(ctx context.Context, owner Owner) (Provisioning, error) {
	rec, err := s.Record(ctx, owner)
	if err != nil {
		return Provisioning{}, err
	}
	if !rec.HasSecret() {
		return Provisioning{}, ErrMissingSecret
	}
	return Provisioning{
		Issuer:   s.Issuer(),
		Record:   rec,
		QRSize:   s.cfg.QRSize,
		QRMargin: s.cfg.QRMargin,
	}, nil
}

func (s *Service) ProvisioningURI(ctx context.Context, owner Owner) (string, error) {
	p, err := s.Provisioning(ctx, owner)
	if err != nil {
		return "", err
	}
	return p.URI()
}

func (s *Service) ProvisioningQR(ctx context.Context, owner Owner) (string, error) {
	p, err := s.Provisioning(ctx, owner)
	if err != nil {
		return "", err
	}
	return p.QR()
}

// update runs fn inside the store's critical section. Errors returned by fn and
// ErrRecordNotFound pass through; anything else is a storage failure.
func (s *Service) update(ctx context.Context, owner Owner, fn func(*Record) error) (*Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var fnErr error
	rec, err := s.store.Update(ctx, owner, func(r *Record) error {
		fnErr = fn(r)
		return fnErr
	})
	switch {
	case err == nil:
		return rec, nil
	case fnErr != nil && errors.Is(err, fnErr):
		return nil, fnErr
	case errors.Is(err, ErrRecordNotFound):
		return nil, ErrRecordNotFound
	default:
		return nil, errors.Join(ErrFailedToSaveRecord, err)
	}
}

func (s *Service) emit(ctx context.Context, kind EventKind, rec *Record) {
	s.metrics.event(kind)
	if s.notifier == nil {
		return
	}
	event := Event{Kind: kind, Owner: rec.Owner, Label: rec.Label, At: s.now()}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "two-factor notifier failed",
			logger.EventKind(string(kind)),
			logger.Owner(rec.Owner.String()),
			logger.Error(err),
		)
	}
}
