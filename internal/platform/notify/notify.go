// Package notify is the in-process notification bus. Services publish one
// notification per successful mutation; subscribers are invoked synchronously
// in subscription order, and a failing subscriber never affects the publisher
// or the subscribers after it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"intentions/internal/platform/metrics"
	"intentions/pkg/requestcontext"
)

// Notification is a typed record of a completed mutation.
type Notification interface {
	Kind() string
	OccurredAt() time.Time
}

// Event is the base embedded by every concrete notification.
type Event struct {
	Type      string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a base event of the given kind.
func NewEvent(kind string, at time.Time) Event {
	return Event{Type: kind, Timestamp: at.UTC()}
}

func (e Event) Kind() string          { return e.Type }
func (e Event) OccurredAt() time.Time { return e.Timestamp }

// Handler reacts to a notification. Returned errors are logged and counted.
type Handler func(ctx context.Context, n Notification) error

type subscription struct {
	name string
	fn   Handler
}

// Bus dispatches notifications to subscribers by kind.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger sets the logger used for publish and failure records.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(b *Bus) {
		b.tracer = t
	}
}

// NewBus returns a bus with no subscribers.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]subscription),
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("intentions/notify"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe appends h to the handlers of kind. Subscribing the same handler
// twice makes it run twice. name identifies the handler in logs.
func (b *Bus) Subscribe(kind, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], subscription{name: name, fn: h})
}

// Subscribers returns how many handlers are registered for kind.
func (b *Bus) Subscribers(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// Publish delivers n to every handler of its kind in subscription order and
// returns after the last one. Handler errors and panics are contained.
func (b *Bus) Publish(ctx context.Context, n Notification) {
	kind := n.Kind()
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[kind]...)
	b.mu.RUnlock()

	ctx, span := b.tracer.Start(ctx, "notify.publish",
		trace.WithAttributes(
			attribute.String("notification.kind", kind),
			attribute.Int("notification.subscribers", len(subs)),
		))
	defer span.End()

	b.logger.InfoContext(ctx, "domain event published",
		"event_type", kind,
		"subscribers", len(subs),
		"request_id", requestcontext.RequestID(ctx),
	)
	b.metrics.IncPublished(kind)

	for _, sub := range subs {
		if err := b.invoke(ctx, sub, n); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler failed")
			b.metrics.IncHandlerFailure(kind)
			b.logger.ErrorContext(ctx, "event handler failed",
				"event_type", kind,
				"handler", sub.name,
				"error", err,
			)
		}
	}
}

func (b *Bus) invoke(ctx context.Context, sub subscription, n Notification) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return sub.fn(ctx, n)
}

// Async adapts h to run on its own goroutine. The returned handler never
// fails; h's errors and panics are logged from the goroutine.
func Async(h Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, n Notification) error {
		ctx = context.WithoutCancel(ctx)
		go func() {
			defer func() {
				if p := recover(); p != nil {
					logger.ErrorContext(ctx, "async event handler panicked", "event_type", n.Kind(), "panic", p)
				}
			}()
			if err := h(ctx, n); err != nil {
				logger.ErrorContext(ctx, "async event handler failed", "event_type", n.Kind(), "error", err)
			}
		}()
		return nil
	}
}
