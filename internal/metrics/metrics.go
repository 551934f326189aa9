// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	ChatTurns    *prometheus.CounterVec
	ReceiptScans *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
}

// New creates a fresh registry with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetly_http_requests_total",
			Help: "HTTP requests by method, route, and status class.",
		}, []string{"method", "route", "status"}),
		ChatTurns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetly_chat_turns_total",
			Help: "Chat turns by pathway (text, receipt) and outcome.",
		}, []string{"pathway", "outcome"}),
		ReceiptScans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetly_receipt_scans_total",
			Help: "Receipt analyses by outcome.",
		}, []string{"outcome"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budgetly_split_submissions_total",
			Help: "Bill split submissions by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
