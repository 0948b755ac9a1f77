package twofactor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

const vectorSecret = "KS72XBTN5PEBGX2IWBMVW44LXHPAQ7L3"

var epoch = time.Date(2020, time.January, 1, 20, 30, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: epoch} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type user struct {
	id    string
	email string
}

func (u user) TwoFactorOwner() twofactor.Owner { return twofactor.NewOwner("user", u.id) }
func (u user) TwoFactorLabel() string          { return u.email }

var alice = user{id: "1", email: "alice@example.com"}

type fixture struct {
	svc    *twofactor.Service
	store  *twofactor.MemoryStore
	clock  *clock
	events *recorder
}

func newFixture(t *testing.T, mutate ...func(*twofactor.Config)) *fixture {
	t.Helper()
	cfg := twofactor.DefaultConfig()
	cfg.AppName = "Acme"
	cfg.SafeDevicesEnabled = true
	for _, m := range mutate {
		m(&cfg)
	}

	f := &fixture{
		store:  twofactor.NewMemoryStore(),
		clock:  newClock(),
		events: &recorder{},
	}
	svc, err := twofactor.NewService(f.store, cfg,
		twofactor.WithClock(f.clock.Now),
		twofactor.WithNotifier(f.events),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// enable enrolls u and confirms with the current code.
func (f *fixture) enable(t *testing.T, u user) twofactor.RecoveryCodes {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, u.TwoFactorOwner(), u.TwoFactorLabel())
	require.NoError(t, err)
	codes, err := f.svc.Enable(ctx, u.TwoFactorOwner())
	require.NoError(t, err)
	return codes
}

// seed stores an enabled record with the well-known secret.
func (f *fixture) seed(t *testing.T, u user) {
	t.Helper()
	rec := twofactor.NewRecord(u.TwoFactorOwner(), f.svc.Config().TOTPParams(), f.clock.Now())
	rec.Flush(f.svc.Config().TOTPParams(), vectorSecret, f.clock.Now())
	rec.Label = u.TwoFactorLabel()
	rec.Enable(f.clock.Now())
	_, err := rec.GenerateRecoveryCodes(2, 8, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), rec))
}

func (f *fixture) code(t *testing.T, u user, offset int) string {
	t.Helper()
	code, err := f.svc.MakeCode(context.Background(), u.TwoFactorOwner(), f.clock.Now(), offset)
	require.NoError(t, err)
	return code
}
