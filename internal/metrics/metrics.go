// Package metrics exposes crawl counters on a private Prometheus registry.
// All increment helpers are nil-safe so the engine can run without metrics
// configured.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the crawl counters.
type Metrics struct {
	registry *prometheus.Registry

	apiPages       prometheus.Counter
	blockedRetries prometheus.Counter
	detailFailures prometheus.Counter
	products       prometheus.Counter
	rows           prometheus.Counter
	duplicates     prometheus.Counter
}

// New creates the counter set on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.apiPages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcrawl_api_pages_fetched_total",
		Help: "Catalog API pages fetched successfully.",
	})
	m.blockedRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcrawl_blocked_retries_total",
		Help: "Cooldown cycles caused by blocked API requests.",
	})
	m.detailFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcrawl_detail_fetch_failures_total",
		Help: "Product detail pages that could not be fetched.",
	})
	m.products = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcrawl_products_processed_total",
		Help: "Products walked by the orchestrator.",
	})
	m.rows = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcrawl_rows_emitted_total",
		Help: "Variant rows written to the sinks.",
	})
	m.duplicates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcrawl_duplicate_variants_total",
		Help: "Variant rows skipped because their identity key was already seen.",
	})

	m.registry.MustRegister(
		m.apiPages,
		m.blockedRetries,
		m.detailFailures,
		m.products,
		m.rows,
		m.duplicates,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncAPIPages counts one successfully fetched API page.
func (m *Metrics) IncAPIPages() {
	if m != nil {
		m.apiPages.Inc()
	}
}

// IncBlockedRetries counts one blocked-request cooldown cycle.
func (m *Metrics) IncBlockedRetries() {
	if m != nil {
		m.blockedRetries.Inc()
	}
}

// IncDetailFailures counts one failed detail-page fetch.
func (m *Metrics) IncDetailFailures() {
	if m != nil {
		m.detailFailures.Inc()
	}
}

// IncProducts counts one processed product.
func (m *Metrics) IncProducts() {
	if m != nil {
		m.products.Inc()
	}
}

// IncRows counts one emitted output row.
func (m *Metrics) IncRows() {
	if m != nil {
		m.rows.Inc()
	}
}

// IncDuplicates counts one deduplicated variant.
func (m *Metrics) IncDuplicates() {
	if m != nil {
		m.duplicates.Inc()
	}
}
