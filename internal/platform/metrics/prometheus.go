package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds custom Prometheus metrics.
type Manager struct {
	Registry                    *prometheus.Registry
	RegistrationsTotal          prometheus.Counter
	LoginsTotal                 prometheus.Counter
	RefreshesTotal              prometheus.Counter
	SweepRunsTotal              prometheus.Counter
	NotificationsGeneratedTotal prometheus.Counter
	HTTPErrorsTotal             *prometheus.CounterVec
	HTTPRequestLatency          *prometheus.HistogramVec
}

// NewManager initializes and registers custom Prometheus metrics.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	registrationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	})
	loginsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "logins_total",
		Help:      "Total number of successful logins.",
	})
	refreshesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "token_refreshes_total",
		Help:      "Total number of successful access-token refreshes.",
	})
	sweepRunsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "notification_sweep_runs_total",
		Help:      "Total number of overdue-notification sweep runs.",
	})
	notificationsGeneratedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "notifications_generated_total",
		Help:      "Total number of notifications generated by the sweep.",
	})
	httpErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP error responses by route and status.",
	}, []string{"route", "status"})
	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		registrationsTotal,
		loginsTotal,
		refreshesTotal,
		sweepRunsTotal,
		notificationsGeneratedTotal,
		httpErrorsTotal,
		httpRequestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:                    registry,
		RegistrationsTotal:          registrationsTotal,
		LoginsTotal:                 loginsTotal,
		RefreshesTotal:              refreshesTotal,
		SweepRunsTotal:              sweepRunsTotal,
		NotificationsGeneratedTotal: notificationsGeneratedTotal,
		HTTPErrorsTotal:             httpErrorsTotal,
		HTTPRequestLatency:          httpRequestLatency,
	}
}

// StartMetricsServer starts an HTTP server exposing Prometheus metrics.
// An empty port disables the server.
func StartMetricsServer(port string, logger *zap.Logger, registry *prometheus.Registry) error {
	if port == "" {
		logger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return server.ListenAndServe()
}
