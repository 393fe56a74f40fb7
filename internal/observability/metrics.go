// Package observability exposes the Prometheus registry and the
// application-level instruments the HTTP layer records into.
package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/inqira/inqira/internal/config"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics carries the GraphQL and HTTP instruments. One instance lives for
// the process; the server scrapes its registry on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	sessionsIssued    prometheus.Counter
	sessionsRevoked   prometheus.Counter
}

func NewMetrics(cfg config.Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	constLabels := prometheus.Labels{
		"service":     serviceName(cfg),
		"environment": environment(cfg),
	}

	m := &Metrics{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "inqira_graphql_operations_total",
			Help:        "GraphQL operations executed, by operation type and outcome.",
			ConstLabels: constLabels,
		}, []string{"operation_type", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "inqira_graphql_operation_duration_seconds",
			Help:        "GraphQL operation latency.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"operation_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "inqira_http_requests_total",
			Help:        "HTTP requests served, by route and status code.",
			ConstLabels: constLabels,
		}, []string{"route", "method", "status"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "inqira_sessions_issued_total",
			Help:        "Login sessions issued.",
			ConstLabels: constLabels,
		}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "inqira_sessions_revoked_total",
			Help:        "Login sessions revoked by logout.",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.operations,
		m.operationDuration,
		m.httpRequests,
		m.sessionsIssued,
		m.sessionsRevoked,
	)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation records one executed GraphQL operation.
func (m *Metrics) ObserveOperation(operationType string, status string, duration time.Duration) {
	operationType = normalizeOperationType(operationType)
	m.operations.WithLabelValues(operationType, status).Inc()
	m.operationDuration.WithLabelValues(operationType).Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(route string, method string, status string) {
	if strings.TrimSpace(route) == "" {
		route = "unknown"
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
}

// SessionIssued counts a successful login.
func (m *Metrics) SessionIssued() { m.sessionsIssued.Inc() }

// SessionRevoked counts a logout.
func (m *Metrics) SessionRevoked() { m.sessionsRevoked.Inc() }

func normalizeOperationType(operationType string) string {
	switch strings.ToLower(strings.TrimSpace(operationType)) {
	case "query":
		return "query"
	case "mutation":
		return "mutation"
	case "subscription":
		return "subscription"
	default:
		return "unknown"
	}
}

func serviceName(cfg config.Config) string {
	if name := strings.TrimSpace(cfg.AppName); name != "" {
		return name
	}
	return "inqira"
}

func environment(cfg config.Config) string {
	if env := strings.TrimSpace(cfg.Environment); env != "" {
		return env
	}
	return "unknown"
}
