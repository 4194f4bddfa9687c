package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HandlerMetrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

type ServiceMetrics struct {
	MethodCount    *prometheus.CounterVec
	MethodDuration *prometheus.HistogramVec
}

type RepositoryMetrics struct {
	QueryCount    *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewHandlerMetrics registers the handler collectors on reg. When reg is also
// a prometheus.Gatherer it backs HTTPHandler, otherwise the default gatherer does.
func NewHandlerMetrics(reg prometheus.Registerer) *HandlerMetrics {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adt_handler_requests_total",
			Help: "Total number of advertisement HTTP requests handled.",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adt_handler_request_duration_seconds",
			Help:    "Histogram of advertisement handler latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	reg.MustRegister(requestCount, requestDuration)

	gatherer, ok := reg.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}

	return &HandlerMetrics{
		RequestCount:    requestCount,
		RequestDuration: requestDuration,
		gatherer:        gatherer,
	}
}

func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	methodCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adt_service_methods_total",
			Help: "Total number of advertisement service calls.",
		},
		[]string{"method", "status"},
	)

	methodDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adt_service_method_duration_seconds",
			Help:    "Histogram of advertisement service call duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	reg.MustRegister(methodCount, methodDuration)

	return &ServiceMetrics{
		MethodCount:    methodCount,
		MethodDuration: methodDuration,
	}
}

func NewRepositoryMetrics(reg prometheus.Registerer) *RepositoryMetrics {
	queryCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adt_repository_queries_total",
			Help: "Total number of advertisement store queries executed.",
		},
		[]string{"query", "status"},
	)

	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adt_repository_query_duration_seconds",
			Help:    "Histogram of advertisement store query duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query", "status"},
	)

	reg.MustRegister(queryCount, queryDuration)

	return &RepositoryMetrics{
		QueryCount:    queryCount,
		QueryDuration: queryDuration,
	}
}

func (hm *HandlerMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})
}

// Observe records one handled request.
func (hm *HandlerMetrics) Observe(method, endpoint, status string, start time.Time) {
	duration := time.Since(start).Seconds()
	hm.RequestCount.WithLabelValues(method, endpoint, status).Inc()
	hm.RequestDuration.WithLabelValues(method, endpoint, status).Observe(duration)
}

// Observe records one service call.
func (sm *ServiceMetrics) Observe(method, status string, start time.Time) {
	duration := time.Since(start).Seconds()
	sm.MethodCount.WithLabelValues(method, status).Inc()
	sm.MethodDuration.WithLabelValues(method, status).Observe(duration)
}

// Observe records one store query.
func (rm *RepositoryMetrics) Observe(query, status string, start time.Time) {
	duration := time.Since(start).Seconds()
	rm.QueryCount.WithLabelValues(query, status).Inc()
	rm.QueryDuration.WithLabelValues(query, status).Observe(duration)
}
