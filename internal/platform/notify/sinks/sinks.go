// Package sinks forwards bus notifications to places outside the process.
// Each sink exposes Handle, a notify.Handler, and is subscribed per kind at
// startup.
package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"intentions/internal/platform/notify"
	"intentions/pkg/platform/circuit"
)

// Encode renders a notification as its JSON wire form.
func Encode(n notify.Notification) ([]byte, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", n.Kind(), err)
	}
	return payload, nil
}

// Log writes one structured line per notification.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a log sink.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Handle(ctx context.Context, n notify.Notification) error {
	l.logger.InfoContext(ctx, "notification",
		"log_type", "event",
		"event_type", n.Kind(),
		"occurred_at", n.OccurredAt(),
		"payload", n,
	)
	return nil
}

// guard feeds a delivery outcome through the breaker. While the circuit is
// open failures are swallowed so the bus log is not flooded.
func guard(ctx context.Context, b *circuit.Breaker, logger *slog.Logger, kind string, err error) error {
	suppress, t := b.Record(err)
	switch t {
	case circuit.Tripped:
		logger.WarnContext(ctx, "notification sink circuit opened", "sink", b.Name(), "event_type", kind, "error", err)
	case circuit.Recovered:
		logger.InfoContext(ctx, "notification sink recovered", "sink", b.Name())
	}
	if err == nil || suppress {
		return nil
	}
	return err
}
