// Package metrics provides Prometheus metrics collection for the runtime,
// adapted from infrastructure/metrics.Metrics: the teacher scopes
// counters to HTTP/blockchain concerns; here they are scoped to the
// per-frame orchestrator loop, the module registry, and the ECS store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the runtime registers.
type Metrics struct {
	FrameDuration   prometheus.Histogram
	FrameCount      prometheus.Counter
	ScriptErrors    *prometheus.CounterVec
	ModuleReloads   *prometheus.CounterVec
	ModuleVersion   *prometheus.GaugeVec
	WorldRebuilds   prometheus.Counter
	WorldRebuildDur prometheus.Histogram
	WatcherChanges  prometheus.Counter
	EntitiesAlive   prometheus.Gauge
	EventsEmitted   *prometheus.CounterVec
}

// New creates a Metrics instance registered against the default registerer.
func New(namespace string) *Metrics {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against registerer.
func NewWithRegistry(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Duration of one orchestrator update() call.",
			Buckets:   []float64{.0005, .001, .002, .004, .008, .016, .033, .066, .1, .25},
		}),
		FrameCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of frames advanced.",
		}),
		ScriptErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "script_errors_total",
			Help:      "Total script runtime errors, by module id and phase.",
		}, []string{"module_id", "phase"}),
		ModuleReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_reloads_total",
			Help:      "Total module re-evaluations, by module id.",
		}, []string{"module_id"}),
		ModuleVersion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "module_version",
			Help:      "Current version of a loaded module.",
		}, []string{"module_id"}),
		WorldRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "world_rebuilds_total",
			Help:      "Total world rebuilds triggered by a root descriptor change.",
		}),
		WorldRebuildDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "world_rebuild_duration_seconds",
			Help:      "Duration of a full world rebuild.",
			Buckets:   prometheus.DefBuckets,
		}),
		WatcherChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watcher_changes_total",
			Help:      "Total changed-module-id events drained from the watcher.",
		}),
		EntitiesAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ecs_entities_alive",
			Help:      "Current count of live entities.",
		}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Total event bus emissions, by topic.",
		}, []string{"topic"}),
	}

	collectors := []prometheus.Collector{
		m.FrameDuration, m.FrameCount, m.ScriptErrors, m.ModuleReloads,
		m.ModuleVersion, m.WorldRebuilds, m.WorldRebuildDur, m.WatcherChanges,
		m.EntitiesAlive, m.EventsEmitted,
	}
	for _, c := range collectors {
		if registerer != nil {
			_ = registerer.Register(c)
		}
	}
	return m
}
