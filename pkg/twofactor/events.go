package twofactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/logger"
)

// EventKind names a lifecycle transition of a record.
type EventKind string

const (
	EventTwoFactorEnabled       EventKind = "two_factor_enabled"
	EventTwoFactorDisabled      EventKind = "two_factor_disabled"
	EventRecoveryCodesGenerated EventKind = "recovery_codes_generated"
	EventRecoveryCodesDepleted  EventKind = "recovery_codes_depleted"
)

// Event is emitted after the corresponding change has been persisted.
type Event struct {
	Kind  EventKind `json:"kind"`
	Owner Owner     `json:"owner"`
	Label string    `json:"label,omitempty"`
	At    time.Time `json:"at"`
}

// Notifier receives lifecycle events. Errors are logged by the caller and never
// fail the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Notifiers fans an event out to every notifier and joins their errors.
type Notifiers []Notifier

func (n Notifiers) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, notifier := range n {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes every event to a logger at Info level.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, event Event) error {
	l.log.InfoContext(ctx, "two-factor event",
		logger.EventKind(string(event.Kind)),
		logger.Owner(event.Owner.String()),
		slog.Time("at", event.At),
	)
	return nil
}
