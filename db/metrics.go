package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector is a MetricsCollector backed by Prometheus.
// Samples are labelled by statement verb and status ("ok" or "error").
type PrometheusCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusCollector creates the collector and registers its metrics on
// registry. It panics if metrics with the same names are already registered.
func NewPrometheusCollector(registry prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sharebnb_db_query_duration_seconds",
				Help:    "Time spent executing SQL statements.",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"verb", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sharebnb_db_queries_total",
				Help: "Number of SQL statements executed.",
			},
			[]string{"verb", "status"},
		),
	}
	registry.MustRegister(c.duration, c.total)
	return c
}

// RecordQuery implements MetricsCollector.
func (c *PrometheusCollector) RecordQuery(query string, d time.Duration, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	labels := prometheus.Labels{"verb": Verb(query), "status": status}
	c.duration.With(labels).Observe(d.Seconds())
	c.total.With(labels).Inc()
}
