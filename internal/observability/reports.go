package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics observes the report cache. Methods are no-ops on nil.
type ReportMetrics struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	m := &ReportMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_report_cache_hits_total",
			Help: "Report requests served from cache.",
		}, []string{"report"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_report_cache_miss_total",
			Help: "Report requests that had to be built.",
		}, []string{"report"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_report_build_duration_seconds",
			Help:    "Duration required to aggregate a report.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
	}
	reg.MustRegister(m.hits, m.misses, m.duration)
	return m
}

func (m *ReportMetrics) CacheHit(report string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(report).Inc()
}

func (m *ReportMetrics) CacheMiss(report string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(report).Inc()
}

func (m *ReportMetrics) ObserveBuild(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(report).Observe(d.Seconds())
}
