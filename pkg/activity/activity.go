package activity

import (
	"context"
	"time"
)

// Event is a change notification emitted after structural or workflow
// mutations. Search and registry indexers consume these keyed by object type
// and id to invalidate caches and refresh indexes.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Notifier receives emitted events. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Emitter fans events out to a notifier. A nil or unconfigured emitter drops
// everything, so callers can emit unconditionally.
type Emitter struct {
	notifier Notifier
	channel  string
	now      func() time.Time
}

// Option configures the emitter.
type Option func(*Emitter)

// WithChannel stamps every event with the supplied channel name.
func WithChannel(channel string) Option {
	return func(e *Emitter) {
		e.channel = channel
	}
}

// WithClock overrides the clock used to stamp events without a timestamp.
func WithClock(clock func() time.Time) Option {
	return func(e *Emitter) {
		if clock != nil {
			e.now = clock
		}
	}
}

// NewEmitter constructs an emitter bound to the supplied notifier.
func NewEmitter(notifier Notifier, opts ...Option) *Emitter {
	e := &Emitter{
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether emitted events reach a notifier.
func (e *Emitter) Enabled() bool {
	return e != nil && e.notifier != nil
}

// Emit delivers the event to the configured notifier. Events without a verb
// or object are dropped.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if event.Verb == "" || event.ObjectID == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	return e.notifier.Notify(ctx, event)
}
