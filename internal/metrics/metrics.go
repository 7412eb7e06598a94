// Package metrics holds the Prometheus collectors of the GraphQL server and
// the Contentful client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	graphqlRequests   *prometheus.CounterVec
	graphqlDuration   prometheus.Histogram
	contentfulCalls   *prometheus.CounterVec
	contentfulLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		graphqlRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphql_requests_total",
			Help: "GraphQL requests served, by outcome.",
		}, []string{"status"}),
		graphqlDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "graphql_request_duration_seconds",
			Help:    "Time spent executing GraphQL requests.",
			Buckets: prometheus.DefBuckets,
		}),
		contentfulCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentful_requests_total",
			Help: "HTTP calls made to Contentful, by API and status code.",
		}, []string{"api", "status"}),
		contentfulLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contentful_request_duration_seconds",
			Help:    "Latency of HTTP calls made to Contentful.",
			Buckets: prometheus.DefBuckets,
		}, []string{"api"}),
	}

	m.registry.MustRegister(
		m.graphqlRequests,
		m.graphqlDuration,
		m.contentfulCalls,
		m.contentfulLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveGraphQL records one executed GraphQL request. status is "ok",
// "error" (the result carried errors) or "invalid" (the request was rejected).
func (m *Metrics) ObserveGraphQL(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.graphqlRequests.WithLabelValues(status).Inc()
	m.graphqlDuration.Observe(took.Seconds())
}

// ObserveContentful records one HTTP call; code 0 means the call never got a response.
func (m *Metrics) ObserveContentful(api string, code int, took time.Duration) {
	if m == nil {
		return
	}
	status := "failed"
	if code > 0 {
		status = strconv.Itoa(code)
	}
	m.contentfulCalls.WithLabelValues(api, status).Inc()
	m.contentfulLatency.WithLabelValues(api).Observe(took.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
