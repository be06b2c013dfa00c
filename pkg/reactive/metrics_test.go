package reactive

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetricsRecordEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))
	rt, realm := newTestRuntime(t, WithMetrics(m))
	state := realm.NewObject(map[string]any{"a": 0, "b": 0})

	unwatch := rt.Watch(func() { _ = state.Get("a") })
	if got := metricGaugeValue(t, m.subscriptions); got != 1 {
		t.Errorf("subscriptions = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.watches); got != 1 {
		t.Errorf("watches = %v, want 1", got)
	}

	state.Set("b", 1)
	rt.Batch(func() { state.Set("a", 1) })

	if got := metricCounterValue(t, m.runs.WithLabelValues(string(TriggerInitial))); got != 1 {
		t.Errorf("runs(initial) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.runs.WithLabelValues(string(TriggerChange))); got != 1 {
		t.Errorf("runs(change) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.changeChecks.WithLabelValues("fresh")); got != 1 {
		t.Errorf("checks(fresh) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.batches); got != 1 {
		t.Errorf("batches = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.flushed); got != 1 {
		t.Errorf("flushed = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.traps); got != 0 {
		t.Errorf("traps = %v at rest, want 0", got)
	}

	unwatch()
	if got := metricGaugeValue(t, m.subscriptions); got != 0 {
		t.Errorf("subscriptions = %v after unwatch, want 0", got)
	}
	if got := metricGaugeValue(t, m.watches); got != 0 {
		t.Errorf("watches = %v after unwatch, want 0", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.watchCreated()
	m.changeChecked(true)
	m.batchFlushed(3)
	m.subscriptionsChanged(1)
	m.setTraps(2)
}
