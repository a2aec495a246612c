// Package telemetry registers the Prometheus metrics exposed by the
// gateway on /metrics.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	UpdatesReceived  prometheus.Counter
	UpdatesDropped   prometheus.Counter
	ExecutorFailures prometheus.Counter
	ThreadsResolved  prometheus.Counter
	ThreadsFailed    prometheus.Counter
	WatchCycles      prometheus.Counter

	// Histograms (seconds)
	MirrorRequestDuration prometheus.Observer
	ThreadResolveDuration prometheus.Observer

	// Gauges
	ChatQueuesGauge prometheus.Gauge
)

// Init registers all metrics (idempotent).
func Init() {
	once.Do(func() {
		UpdatesReceived = promauto.NewCounter(prometheus.CounterOpts{Name: "postwing_updates_received_total", Help: "Inbound platform updates received"})
		UpdatesDropped = promauto.NewCounter(prometheus.CounterOpts{Name: "postwing_updates_dropped_total", Help: "Updates no executor matched"})
		ExecutorFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "postwing_executor_failures_total", Help: "Executor handle errors"})
		ThreadsResolved = promauto.NewCounter(prometheus.CounterOpts{Name: "postwing_threads_resolved_total", Help: "Threads resolved successfully"})
		ThreadsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "postwing_threads_failed_total", Help: "Thread resolutions that failed"})
		WatchCycles = promauto.NewCounter(prometheus.CounterOpts{Name: "postwing_watch_cycles_total", Help: "Account watcher poll cycles"})
		MirrorRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "postwing_mirror_request_duration_seconds", Help: "Upstream mirror request duration", Buckets: prometheus.DefBuckets})
		ThreadResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "postwing_thread_resolve_duration_seconds", Help: "Thread resolution duration", Buckets: prometheus.DefBuckets})
		ChatQueuesGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "postwing_chat_queues", Help: "Live per-chat dispatch queues"})
	})
}

// IncUpdatesReceived counts an inbound platform update.
func IncUpdatesReceived() {
	if UpdatesReceived != nil {
		UpdatesReceived.Inc()
	}
}

// IncUpdatesDropped counts an update no executor matched.
func IncUpdatesDropped() {
	if UpdatesDropped != nil {
		UpdatesDropped.Inc()
	}
}

// IncExecutorFailures counts a failed executor run.
func IncExecutorFailures() {
	if ExecutorFailures != nil {
		ExecutorFailures.Inc()
	}
}

// SetChatQueues records the current number of per-chat queues.
func SetChatQueues(n int) {
	if ChatQueuesGauge != nil {
		ChatQueuesGauge.Set(float64(n))
	}
}

// TimeFunc measures fn and records its duration in obs when non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}
