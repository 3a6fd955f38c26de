package sinks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"intentions/internal/platform/notify"
	"intentions/pkg/platform/circuit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Kafka produces each notification as a record keyed by its kind.
type Kafka struct {
	client  Producer
	topic   string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewKafka returns a Kafka sink writing to topic.
func NewKafka(client Producer, topic string, logger *slog.Logger) *Kafka {
	return &Kafka{
		client:  client,
		topic:   topic,
		breaker: circuit.New("kafka"),
		logger:  logger,
	}
}

func (k *Kafka) Handle(ctx context.Context, n notify.Notification) error {
	payload, err := Encode(n)
	if err != nil {
		return err
	}
	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(n.Kind()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(n.Kind())},
		},
		Timestamp: n.OccurredAt(),
	}
	err = k.client.ProduceSync(ctx, rec).FirstErr()
	if err != nil {
		err = fmt.Errorf("kafka produce %s: %w", n.Kind(), err)
	}
	return guard(ctx, k.breaker, k.logger, n.Kind(), err)
}

// DialKafka builds a producer client for brokers.
func DialKafka(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
