package metrics

import "github.com/prometheus/client_golang/prometheus"

const latencyMetricName = "juv_upstream_request_latency_seconds"

// UpstreamMetrics exposes counters/histograms for Juvonno API traffic and the
// payload caches in front of it.
type UpstreamMetrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
}

func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juv",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total Juvonno API requests",
		}, []string{"endpoint", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    latencyMetricName,
			Help:    "Latency of Juvonno API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juv",
			Subsystem: "upstream",
			Name:      "cache_lookups_total",
			Help:      "Payload cache lookups by object kind and outcome",
		}, []string{"object", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestTotal, m.requestLatency, m.cacheLookups)
	return m
}

// ObserveRequest records one upstream call. status is "ok" or "error".
func (m *UpstreamMetrics) ObserveRequest(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(endpoint, status).Inc()
	m.requestLatency.WithLabelValues(endpoint, status).Observe(seconds)
}

// ObserveCache records one payload cache lookup.
func (m *UpstreamMetrics) ObserveCache(object string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(object, outcome).Inc()
}
