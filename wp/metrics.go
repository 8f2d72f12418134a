package wp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks upstream calls. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
}

// NewMetrics registers the client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pressfront",
			Subsystem: "wordpress",
			Name:      "requests_total",
			Help:      "WordPress API requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pressfront",
			Subsystem: "wordpress",
			Name:      "request_duration_seconds",
			Help:      "WordPress API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pressfront",
			Subsystem: "wordpress",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"op", "result"}),
	}
}

func (m *Metrics) observe(op, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) cacheLookup(op string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(op, result).Inc()
}
