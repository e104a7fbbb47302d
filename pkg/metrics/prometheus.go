// Package metrics provides Prometheus metrics for the IntellInbox API client.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Error type labels recorded on failed requests.
const (
	ErrorTypeTransport = "transport"
	ErrorTypeStatus    = "status"
	ErrorTypeDecode    = "decode"
	ErrorTypeRequest   = "request"
)

// statusNone labels requests that never produced a response.
const statusNone = "none"

// Manager owns the client-side request metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	inFlight        prometheus.Gauge
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry
// each manager gets a fresh registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "intellinbox",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_total",
		Help:        "Total number of API requests by operation, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"operation", "method", "status_code"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_duration_milliseconds",
		Help:        "API request round trip duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation", "method", "status_code"})

	m.requestErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_errors_total",
		Help:        "Total number of failed API requests by operation and error type",
		ConstLabels: m.constLabels,
	}, []string{"operation", "error_type"})

	m.inFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_in_flight",
		Help:        "Number of API requests currently awaiting a response",
		ConstLabels: m.constLabels,
	})
}

// RequestStarted marks a request as in flight. Call the returned func once
// the round trip has finished.
func (m *Manager) RequestStarted() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// ObserveRequest records one finished round trip. statusCode is 0 when no
// response was received.
func (m *Manager) ObserveRequest(operation, method string, statusCode int, d time.Duration) {
	code := statusNone
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(operation, method, code).Inc()
	m.requestDuration.WithLabelValues(operation, method, code).Observe(float64(d.Microseconds()) / 1000)
}

// RecordError records a failed request.
func (m *Manager) RecordError(operation, errorType string) {
	m.requestErrors.WithLabelValues(operation, errorType).Inc()
}

// Registry returns the registry the manager's metrics live in.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (m *Manager) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGather, err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("%w: %w", ErrGather, err)
		}
	}
	return nil
}
