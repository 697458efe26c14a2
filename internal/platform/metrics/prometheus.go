package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry             *prometheus.Registry
	ListingsCreatedTotal prometheus.Counter
	ListingsUpdatedTotal prometheus.Counter
	ListingsDeletedTotal prometheus.Counter
	ListingViewsTotal    prometheus.Counter
	FavoriteTogglesTotal *prometheus.CounterVec // action: added|removed
	ContactRequestsTotal prometheus.Counter
	APIErrorsTotal       *prometheus.CounterVec   // route, status
	APILatency           *prometheus.HistogramVec // method, route
}

// NewMetricsManager registers all collectors on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	ns := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingsUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listings_updated_total",
			Help:      "Total number of listings updated.",
		}),
		ListingsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listings_deleted_total",
			Help:      "Total number of listings deleted.",
		}),
		ListingViewsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listing_views_total",
			Help:      "Total number of single-listing views served.",
		}),
		FavoriteTogglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by resulting action.",
		}, []string{"action"}),
		ContactRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "contact_requests_total",
			Help:      "Total number of contact requests sent to owners.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "api_errors_total",
			Help:      "HTTP responses with status >= 400 by route.",
		}, []string{"route", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ListingsCreatedTotal,
		m.ListingsUpdatedTotal,
		m.ListingsDeletedTotal,
		m.ListingViewsTotal,
		m.FavoriteTogglesTotal,
		m.ContactRequestsTotal,
		m.APIErrorsTotal,
		m.APILatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records latency and, for failed responses, an error sample.
func (m *MetricsManager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APILatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if status >= http.StatusBadRequest {
		m.APIErrorsTotal.WithLabelValues(route, http.StatusText(status)).Inc()
	}
}

// The domain counters below are nil-safe so usecases can run without metrics.

func (m *MetricsManager) ListingCreated() {
	if m != nil {
		m.ListingsCreatedTotal.Inc()
	}
}

func (m *MetricsManager) ListingUpdated() {
	if m != nil {
		m.ListingsUpdatedTotal.Inc()
	}
}

func (m *MetricsManager) ListingDeleted() {
	if m != nil {
		m.ListingsDeletedTotal.Inc()
	}
}

func (m *MetricsManager) ListingViewed() {
	if m != nil {
		m.ListingViewsTotal.Inc()
	}
}

func (m *MetricsManager) FavoriteToggled(added bool) {
	if m == nil {
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	m.FavoriteTogglesTotal.WithLabelValues(action).Inc()
}

func (m *MetricsManager) ContactRequested() {
	if m != nil {
		m.ContactRequestsTotal.Inc()
	}
}

// StartMetricsServer serves /metrics on port. It blocks like http.ListenAndServe.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
