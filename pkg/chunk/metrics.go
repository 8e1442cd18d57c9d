package chunk

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatcherMetricsCollectors holds the prometheus collectors a Dispatcher
// updates while running a plan. Callers wire these to their registered
// metrics, typically per-source labelled children of a CounterVec or
// HistogramVec.
type DispatcherMetricsCollectors struct {
	ChunksDispatchedCounter prometheus.Counter
	ChunksFailedCounter     prometheus.Counter
	ChunkDurationHistogram  prometheus.Observer
	RunningChunksGauge      prometheus.Gauge
}

// NewDispatcherMetricsCollectors returns unregistered collectors for
// callers that don't report metrics.
func NewDispatcherMetricsCollectors() DispatcherMetricsCollectors {
	return DispatcherMetricsCollectors{
		ChunksDispatchedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunk_dispatcher_chunks_dispatched_total",
			Help: "Number of chunk operations dispatched.",
		}),
		ChunksFailedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chunk_dispatcher_chunks_failed_total",
			Help: "Number of chunk operations that returned an error.",
		}),
		ChunkDurationHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chunk_dispatcher_chunk_duration_seconds",
			Help:    "Duration of a single chunk operation.",
			Buckets: []float64{2.0, 10.0, 30.0, 60.0, 300.0},
		}),
		RunningChunksGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chunk_dispatcher_running_chunks",
			Help: "Number of chunk operations currently running.",
		}),
	}
}
