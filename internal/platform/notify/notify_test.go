package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"intentions/internal/platform/metrics"
)

type itemCreated struct {
	Event
	ItemID int64 `json:"item_id"`
}

func newItemCreated(id int64) itemCreated {
	return itemCreated{Event: NewEvent("item.created", time.Now()), ItemID: id}
}

type BusSuite struct {
	suite.Suite
	logs    bytes.Buffer
	metrics *metrics.Metrics
	bus     *Bus
}

func TestBusSuite(t *testing.T) {
	suite.Run(t, new(BusSuite))
}

func (s *BusSuite) SetupTest() {
	s.logs.Reset()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.bus = NewBus(
		WithLogger(slog.New(slog.NewTextHandler(&s.logs, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *BusSuite) TestHandlersRunInSubscriptionOrder() {
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		s.bus.Subscribe("item.created", name, func(context.Context, Notification) error {
			order = append(order, name)
			return nil
		})
	}

	s.bus.Publish(context.Background(), newItemCreated(1))

	s.Equal([]string{"first", "second", "third"}, order)
	s.Contains(s.logs.String(), "domain event published")
}

func (s *BusSuite) TestFailingHandlerDoesNotStopOthers() {
	var calls []string
	s.bus.Subscribe("item.created", "a", func(context.Context, Notification) error {
		calls = append(calls, "a")
		return nil
	})
	s.bus.Subscribe("item.created", "b", func(context.Context, Notification) error {
		calls = append(calls, "b")
		return errors.New("downstream unavailable")
	})
	s.bus.Subscribe("item.created", "c", func(context.Context, Notification) error {
		calls = append(calls, "c")
		return nil
	})

	s.NotPanics(func() { s.bus.Publish(context.Background(), newItemCreated(1)) })

	s.Equal([]string{"a", "b", "c"}, calls)
	s.Contains(s.logs.String(), "event handler failed")
	s.Contains(s.logs.String(), "downstream unavailable")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.HandlerFailures.WithLabelValues("item.created")))
}

func (s *BusSuite) TestPanickingHandlerIsContained() {
	rec := NewRecorder()
	s.bus.Subscribe("item.created", "boom", func(context.Context, Notification) error {
		panic("nil map")
	})
	rec.Attach(s.bus, "item.created")

	s.NotPanics(func() { s.bus.Publish(context.Background(), newItemCreated(3)) })

	s.Len(rec.Events(), 1)
	s.Contains(s.logs.String(), "handler panicked: nil map")
}

func (s *BusSuite) TestNoSubscribersIsNoop() {
	s.NotPanics(func() { s.bus.Publish(context.Background(), newItemCreated(1)) })
	s.Equal(0, s.bus.Subscribers("item.created"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Published.WithLabelValues("item.created")))
}

func (s *BusSuite) TestDuplicateSubscriptionRunsTwice() {
	rec := NewRecorder()
	rec.Attach(s.bus, "item.created", "item.created")

	s.bus.Publish(context.Background(), newItemCreated(9))

	s.Equal(2, s.bus.Subscribers("item.created"))
	s.Equal([]string{"item.created", "item.created"}, rec.Kinds())
}

func (s *BusSuite) TestOnlyMatchingKindIsDelivered() {
	rec := NewRecorder().Attach(s.bus, "item.deleted")

	s.bus.Publish(context.Background(), newItemCreated(1))

	s.Empty(rec.Events())
}

func (s *BusSuite) TestHandlerReceivesTypedPayload() {
	var got itemCreated
	s.bus.Subscribe("item.created", "typed", func(_ context.Context, n Notification) error {
		got = n.(itemCreated)
		return nil
	})

	s.bus.Publish(context.Background(), newItemCreated(42))

	s.Equal(int64(42), got.ItemID)
	s.Equal("item.created", got.Type)
}

func (s *BusSuite) TestAsync() {
	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan Notification, 1)
	s.bus.Subscribe("item.created", "async", Async(func(_ context.Context, n Notification) error {
		defer wg.Done()
		done <- n
		return errors.New("ignored by publisher")
	}, slog.New(slog.DiscardHandler)))

	s.bus.Publish(context.Background(), newItemCreated(5))
	wg.Wait()

	s.Equal("item.created", (<-done).Kind())
	s.NotContains(s.logs.String(), "event handler failed")
}
