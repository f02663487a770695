package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "mudra"

// Action sources for the primary action counter.
const (
	SourceHand    = "hand"
	SourcePointer = "pointer"
)

// Metrics holds the App's Prometheus collectors. Each App owns its registry
// so that several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	framesProcessed prometheus.Counter
	framesSkipped   prometheus.Counter
	detectorErrors  prometheus.Counter
	actions         *prometheus.CounterVec
	voxels          prometheus.Gauge
	layers          prometheus.Gauge
	idle            prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_processed_total",
			Help:      "Camera frames classified and applied.",
		}),
		framesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "frames_skipped_total",
			Help:      "Frames dropped because their timestamp was not newer than the last one.",
		}),
		detectorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "detector_errors_total",
			Help:      "Hand detection failures.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "primary_actions_total",
			Help:      "Primary actions by tool mode, source and outcome.",
		}, []string{"mode", "source", "outcome"}),
		voxels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "voxels",
			Help:      "Voxels in the scene.",
		}),
		layers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "layers",
			Help:      "Layers in the scene.",
		}),
		idle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "capture_idle",
			Help:      "1 while the capture loop runs at the idle frame rate.",
		}),
	}

	m.registry.MustRegister(
		m.framesProcessed, m.framesSkipped, m.detectorErrors,
		m.actions, m.voxels, m.layers, m.idle,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) setIdle(idle bool) {
	if idle {
		m.idle.Set(1)
	} else {
		m.idle.Set(0)
	}
}
