package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncMutation("intents", "create")
	m.IncMutation("intents", "create")
	m.IncPublished("intent.created")
	m.IncHandlerFailure("intent.created")
	m.IncToolCall("get_intent", "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("intents", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Published.WithLabelValues("intent.created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerFailures.WithLabelValues("intent.created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("get_intent", "not_found")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncMutation("users", "delete")
		m.IncPublished("user.deleted")
		m.ObserveRequest("/users", "GET", "200", 0.01)
	})
}
