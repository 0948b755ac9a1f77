package replay

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// DefaultPrefix namespaces replay keys.
const DefaultPrefix = "2fa.code"

// Guard remembers accepted one-time codes per owner for as long as they could
// still validate, so a code is accepted at most once.
type Guard struct {
	store  Store
	prefix string
}

// NewGuard creates a Guard. An empty prefix selects DefaultPrefix.
func NewGuard(store Store, prefix string) *Guard {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Guard{store: store, prefix: prefix}
}

// Key builds "<prefix>|<owner>|<code>".
func (g *Guard) Key(owner, code string) string {
	var b strings.Builder
	b.Grow(len(g.prefix) + len(owner) + len(code) + 2)
	b.WriteString(g.prefix)
	b.WriteByte('|')
	b.WriteString(owner)
	b.WriteByte('|')
	b.WriteString(code)
	return b.String()
}

// HasBeenUsed reports whether code was already accepted for owner.
func (g *Guard) HasBeenUsed(ctx context.Context, owner, code string) (bool, error) {
	return g.store.Exists(ctx, g.Key(owner, code))
}

// MarkUsed records code for owner until it can no longer validate.
// It returns ErrCodeReused when another caller marked it first.
func (g *Guard) MarkUsed(ctx context.Context, owner, code string, at int64, params totp.Params) error {
	ok, err := g.store.SetIfAbsent(ctx, g.Key(owner, code), TTL(at, params))
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeReused
	}
	return nil
}

// TTL is the time left until a code accepted at ts drops out of the validation
// window: periodStart(ts) + (window+1)*period - ts, never less than one second.
func TTL(ts int64, params totp.Params) time.Duration {
	params = params.WithDefaults()
	window := max(params.Window, 0)
	period := int64(params.Period)

	remaining := totp.PeriodStart(ts, params.Period) + int64(window+1)*period - ts
	return time.Duration(max(remaining, 1)) * time.Second
}

// IsReplay reports whether err signals a reused code.
func IsReplay(err error) bool {
	return errors.Is(err, ErrCodeReused)
}
