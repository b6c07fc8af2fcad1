package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the Orchestrator's Prometheus surface, served by
// pkg/orchestrator/debugserver. Grounded on vango-go-vango's
// pkg/server/metrics.go registration style (one struct of pre-registered
// collectors, wired once at construction).
type Metrics struct {
	FramesReceived  prometheus.Counter
	PatchesApplied  prometheus.Counter
	HintsQueued     prometheus.Counter
	HintsMatched    prometheus.Counter
	Reconnects      prometheus.Counter
	ComponentsAlive prometheus.Gauge
}

// NewMetrics constructs and registers a Metrics set against reg. A nil
// reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minimact_frames_received_total",
			Help: "Total wire frames received from the hub.",
		}),
		PatchesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minimact_patches_applied_total",
			Help: "Total vdom patches applied to the live document.",
		}),
		HintsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minimact_hints_queued_total",
			Help: "Total speculative hints queued by the server.",
		}),
		HintsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minimact_hints_matched_total",
			Help: "Total hints matched and applied ahead of a confirmation.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minimact_reconnects_total",
			Help: "Total successful transport reconnects.",
		}),
		ComponentsAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "minimact_components_alive",
			Help: "Currently registered component instances.",
		}),
	}
	reg.MustRegister(m.FramesReceived, m.PatchesApplied, m.HintsQueued, m.HintsMatched, m.Reconnects, m.ComponentsAlive)
	return m
}
