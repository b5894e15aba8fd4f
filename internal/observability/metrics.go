package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netboot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total status HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "netboot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Status HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	discoveryDatagrams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netboot",
			Subsystem: "discovery",
			Name:      "datagrams_total",
			Help:      "Discovery datagrams handled, by result.",
		},
		[]string{"result"},
	)
	bytesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netboot",
			Subsystem: "transfer",
			Name:      "received_bytes_total",
			Help:      "Payload bytes received from senders.",
		},
	)
	bytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netboot",
			Subsystem: "transfer",
			Name:      "written_bytes_total",
			Help:      "Payload bytes flushed to the temp file.",
		},
	)
	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netboot",
			Subsystem: "session",
			Name:      "finished_total",
			Help:      "Finished sessions, by final state.",
		},
		[]string{"outcome"},
	)
	transferSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "netboot",
			Subsystem: "session",
			Name:      "transfer_bytes",
			Help:      "Bytes received per finished session.",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 10),
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			discoveryDatagrams,
			bytesReceived,
			bytesWritten,
			sessions,
			transferSize,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordDiscovery(result string) {
	RegisterMetrics()
	discoveryDatagrams.WithLabelValues(result).Inc()
}

func RecordBytes(received, written int64) {
	RegisterMetrics()
	if received > 0 {
		bytesReceived.Add(float64(received))
	}
	if written > 0 {
		bytesWritten.Add(float64(written))
	}
}

func RecordSession(outcome string, received int64) {
	RegisterMetrics()
	sessions.WithLabelValues(outcome).Inc()
	transferSize.Observe(float64(received))
}
