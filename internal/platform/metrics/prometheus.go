package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the application's Prometheus metrics. A nil manager is
// valid and records nothing, so tests can leave it out.
type MetricsManager struct {
	Registry              *prometheus.Registry
	ListingsCreatedTotal  prometheus.Counter
	ListingsDeletedTotal  prometheus.Counter
	ImageDeleteFailures   prometheus.Counter
	ImageUploadsTotal     prometheus.Counter
	ImageRemovalsTotal    prometheus.Counter
	QueriesTotal          *prometheus.CounterVec // by filter kind
	StaleResultsDiscarded prometheus.Counter
	APIErrorsTotal        *prometheus.CounterVec   // by route and status
	APILatency            *prometheus.HistogramVec // by route
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_deleted_total",
			Help:      "Total number of listings deleted.",
		}),
		ImageDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_image_delete_failures_total",
			Help:      "Images left behind by a listing delete.",
		}),
		ImageUploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_image_uploads_total",
			Help:      "Images uploaded into the pending upload cache.",
		}),
		ImageRemovalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_image_removals_total",
			Help:      "Images removed from the pending upload cache.",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_queries_total",
			Help:      "Listing queries issued, by active filter kind.",
		}, []string{"filter"}),
		StaleResultsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_stale_results_discarded_total",
			Help:      "Query responses dropped because a newer query was issued.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by route.",
		}, []string{"route", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.ListingsCreatedTotal,
		m.ListingsDeletedTotal,
		m.ImageDeleteFailures,
		m.ImageUploadsTotal,
		m.ImageRemovalsTotal,
		m.QueriesTotal,
		m.StaleResultsDiscarded,
		m.APIErrorsTotal,
		m.APILatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *MetricsManager) ListingCreated() {
	if m != nil {
		m.ListingsCreatedTotal.Inc()
	}
}

func (m *MetricsManager) ListingDeleted(failedImages int) {
	if m == nil {
		return
	}
	m.ListingsDeletedTotal.Inc()
	m.ImageDeleteFailures.Add(float64(failedImages))
}

func (m *MetricsManager) ImageUploaded() {
	if m != nil {
		m.ImageUploadsTotal.Inc()
	}
}

func (m *MetricsManager) ImageRemoved() {
	if m != nil {
		m.ImageRemovalsTotal.Inc()
	}
}

func (m *MetricsManager) QueryIssued(filter string) {
	if m != nil {
		m.QueriesTotal.WithLabelValues(filter).Inc()
	}
}

func (m *MetricsManager) StaleDiscarded() {
	if m != nil {
		m.StaleResultsDiscarded.Inc()
	}
}

func (m *MetricsManager) ObserveRequest(route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.APILatency.WithLabelValues(route).Observe(seconds)
	if status >= http.StatusBadRequest {
		m.APIErrorsTotal.WithLabelValues(route, http.StatusText(status)).Inc()
	}
}
