package sinks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"intentions/internal/platform/notify"
	"intentions/pkg/platform/circuit"
)

// RedisPublisher is the subset of the go-redis client the sink needs.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes each notification on the channel <prefix>.<kind>.
type Redis struct {
	client  RedisPublisher
	prefix  string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewRedis returns a Redis pub/sub sink.
func NewRedis(client RedisPublisher, prefix string, logger *slog.Logger) *Redis {
	return &Redis{
		client:  client,
		prefix:  prefix,
		breaker: circuit.New("redis"),
		logger:  logger,
	}
}

// Channel returns the channel a kind is published on.
func (r *Redis) Channel(kind string) string {
	if r.prefix == "" {
		return kind
	}
	return r.prefix + "." + kind
}

func (r *Redis) Handle(ctx context.Context, n notify.Notification) error {
	payload, err := Encode(n)
	if err != nil {
		return err
	}
	err = r.client.Publish(ctx, r.Channel(n.Kind()), payload).Err()
	if err != nil {
		err = fmt.Errorf("redis publish %s: %w", n.Kind(), err)
	}
	return guard(ctx, r.breaker, r.logger, n.Kind(), err)
}
