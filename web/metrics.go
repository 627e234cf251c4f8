// ABOUTME: Prometheus collectors for the HTTP API
// ABOUTME: Counts generated reports, denials and exported bytes on a private registry
package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	reports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	denials  prometheus.Counter
	failures *prometheus.CounterVec
	exported prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesreport",
			Name:      "reports_generated_total",
			Help:      "Reports generated, by report type.",
		}, []string{"type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salesreport",
			Name:      "report_duration_seconds",
			Help:      "Time spent generating a report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		denials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salesreport",
			Name:      "access_denied_total",
			Help:      "Requests rejected by the report capability check.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salesreport",
			Name:      "report_failures_total",
			Help:      "Failed report requests, by HTTP status.",
		}, []string{"status"}),
		exported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salesreport",
			Name:      "export_bytes_total",
			Help:      "Bytes of xlsx workbooks served.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reports, m.duration, m.denials, m.failures, m.exported,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
