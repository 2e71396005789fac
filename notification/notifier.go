package notification

import (
	"context"
	"errors"
)

// Notifier delivers permission change events to an external sink.
type Notifier interface {
	Notify(ctx context.Context, event *Event) error
}

// MultiNotifier fans an event out to several sinks. Delivery is
// attempted on every sink even when an earlier one fails.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier builds a fan-out notifier. Nil entries are dropped
// so callers can pass optional sinks without checking.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	kept := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			kept = append(kept, n)
		}
	}
	return &MultiNotifier{notifiers: kept}
}

// Notify sends the event to every sink and joins any delivery errors.
func (m *MultiNotifier) Notify(ctx context.Context, event *Event) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopNotifier discards events. Used when notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, *Event) error { return nil }
