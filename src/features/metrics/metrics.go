package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Playback and library counters exposed at /metrics.
var (
	TrackChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "resona",
		Name:      "playback_track_changes_total",
		Help:      "Number of committed current-track transitions.",
	})

	TransportToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resona",
		Name:      "playback_transport_toggles_total",
		Help:      "Play/pause transitions by resulting state.",
	}, []string{"state"})

	PlaybackErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resona",
		Name:      "playback_errors_total",
		Help:      "Device load/start failures by kind.",
	}, []string{"kind"})

	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "resona",
		Name:      "playback_queue_length",
		Help:      "Current navigation queue length.",
	})

	RemoteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resona",
		Name:      "library_remote_failures_total",
		Help:      "Data service call failures by operation.",
	}, []string{"operation"})

	DurationsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "resona",
		Name:      "playback_durations_resolved_total",
		Help:      "Number of track durations resolved by the background prober.",
	})
)
