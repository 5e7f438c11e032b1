package bind

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	updates  *prometheus.CounterVec
	duration prometheus.Histogram
	bindings prometheus.Gauge
	batches  prometheus.Counter

	gatherer prometheus.Gatherer
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &metrics{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bind",
			Name:      "updates_total",
			Help:      "Target writes attempted by monitored bindings, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bind",
			Name:      "update_duration_seconds",
			Help:      "Time spent converting, validating and writing a target value.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.016, 0.05},
		}),
		bindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bind",
			Name:      "bindings",
			Help:      "Bindings currently held by the manager.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bind",
			Name:      "batches_total",
			Help:      "Completed UpdateAll batches.",
		}),
	}

	m.updates = register(reg, m.updates)
	m.duration = register(reg, m.duration)
	m.bindings = register(reg, m.bindings)
	m.batches = register(reg, m.batches)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

func (m *metrics) observe(ev updateEvent) {
	result := "ok"
	var e *Error
	if errors.As(ev.err, &e) {
		result = e.Kind.String()
	} else if ev.err != nil {
		result = "error"
	}

	m.updates.WithLabelValues(result).Inc()
	m.duration.Observe(ev.duration.Seconds())
}

// register reuses an identical collector when several managers share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}

	logger().Warn("metric registration failed", "err", err)
	return c
}
