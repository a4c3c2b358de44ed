package middleware

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/storekit-dev/storekit/pkg/storekit"
)

// captureBackend records dispatches behind the decorator under test.
type captureBackend struct {
	mu   sync.Mutex
	acts []storekit.Action
}

func (b *captureBackend) Dispatch(act storekit.Action) {
	b.mu.Lock()
	b.acts = append(b.acts, act)
	b.mu.Unlock()
}

func (b *captureBackend) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.acts)
}

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if !matchLabels(m, labels) {
				continue
			}
			if m.Counter != nil {
				return m.GetCounter().GetValue()
			}
			if m.Histogram != nil {
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range labels {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestPrometheusCountsDispatchesByPhase(t *testing.T) {
	reg := prometheus.NewRegistry()
	inner := &captureBackend{}
	backend := Prometheus(inner, WithRegistry(reg))

	backend.Dispatch(storekit.Action{Type: "profile/load_START", Payload: 1})
	backend.Dispatch(storekit.Action{Type: "profile/load_SUCCESS", Payload: "x"})
	backend.Dispatch(storekit.Action{Type: "counter/increment", Payload: 3})

	if inner.len() != 3 {
		t.Fatalf("inner backend saw %d dispatches, want 3", inner.len())
	}

	tests := []struct {
		labels map[string]string
		want   float64
	}{
		{map[string]string{"type": "profile/load", "phase": "start"}, 1},
		{map[string]string{"type": "profile/load", "phase": "success"}, 1},
		{map[string]string{"type": "counter/increment", "phase": "none"}, 1},
	}
	for _, tt := range tests {
		got := gatherValue(t, reg, "storekit_dispatches_total", tt.labels)
		if got != tt.want {
			t.Errorf("dispatches_total%v = %v, want %v", tt.labels, got, tt.want)
		}
	}

	if got := gatherValue(t, reg, "storekit_dispatch_duration_seconds", map[string]string{"type": "profile/load"}); got != 2 {
		t.Errorf("duration sample count = %v, want 2", got)
	}
}

func TestPrometheusCountsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	backend := Prometheus(&captureBackend{}, WithRegistry(reg))

	backend.Dispatch(storekit.Action{Type: "profile/load_ERROR", Payload: errors.New("boom")})

	if got := gatherValue(t, reg, "storekit_action_errors_total", map[string]string{"type": "profile/load"}); got != 1 {
		t.Errorf("action_errors_total = %v, want 1", got)
	}
}

func TestPrometheusNamespaceOption(t *testing.T) {
	reg := prometheus.NewRegistry()
	backend := Prometheus(&captureBackend{}, WithRegistry(reg), WithNamespace("myapp"))

	backend.Dispatch(storekit.Action{Type: "counter/increment"})

	if got := gatherValue(t, reg, "myapp_dispatches_total", map[string]string{"type": "counter/increment"}); got != 1 {
		t.Errorf("namespaced counter = %v, want 1", got)
	}
}

func TestOpenTelemetryForwardsDispatches(t *testing.T) {
	inner := &captureBackend{}
	backend := OpenTelemetry(inner)

	backend.Dispatch(storekit.Action{Type: "profile/load_START", Payload: 1})
	backend.Dispatch(storekit.Action{Type: "profile/load_ERROR", Payload: errors.New("boom")})

	if inner.len() != 2 {
		t.Errorf("inner backend saw %d dispatches, want 2", inner.len())
	}
}

func TestOpenTelemetryFilterSkipsTracing(t *testing.T) {
	inner := &captureBackend{}
	backend := OpenTelemetry(inner, WithDispatchFilter(func(act storekit.Action) bool {
		return false
	}))

	// Filtered dispatches still reach the inner backend.
	backend.Dispatch(storekit.Action{Type: "counter/increment"})
	if inner.len() != 1 {
		t.Errorf("inner backend saw %d dispatches, want 1", inner.len())
	}
}
