// Package metrics exposes Prometheus instrumentation for the aWhere client.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "awhere"
	subsystem = "client"
)

// Field resolution outcomes.
const (
	ResolutionCached  = "cached"
	ResolutionCreated = "created"
	ResolutionFailed  = "failed"
)

// Collector handles request, token and field resolution metrics.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	retries          *prometheus.CounterVec
	tokenFetches     *prometheus.CounterVec
	fieldResolutions *prometheus.CounterVec
}

// NewCollector creates a new collector. Nothing is exported until Register.
func NewCollector() *Collector {
	return &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of API requests by method and status code",
			},
			[]string{"method", "status_code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "API request duration distribution",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"method"},
		),

		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "retries_total",
				Help:      "Total number of transport retry attempts",
			},
			[]string{"method"},
		),

		tokenFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "token_fetches_total",
				Help:      "Token requests by outcome",
			},
			[]string{"outcome"},
		),

		fieldResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "field_resolutions_total",
				Help:      "Coordinate to field resolutions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers all metrics with registerer. A nil registerer is a no-op;
// metrics already registered by another client are reused.
func (c *Collector) Register(registerer prometheus.Registerer) error {
	if registerer == nil {
		return nil
	}

	c.requestsTotal = registerVec(registerer, c.requestsTotal)
	c.retries = registerVec(registerer, c.retries)
	c.tokenFetches = registerVec(registerer, c.tokenFetches)
	c.fieldResolutions = registerVec(registerer, c.fieldResolutions)

	err := registerer.Register(c.requestDuration)
	if err != nil {
		already := prometheus.AlreadyRegisteredError{}
		if !errors.As(err, &already) {
			return fmt.Errorf("registering request duration: %w", err)
		}

		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if ok {
			c.requestDuration = existing
		}
	}

	return nil
}

func registerVec(registerer prometheus.Registerer, vec *prometheus.CounterVec) *prometheus.CounterVec {
	err := registerer.Register(vec)
	if err == nil {
		return vec
	}

	already := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}

	return vec
}

// ObserveRequest records a completed exchange. Status 0 marks a connection failure.
func (c *Collector) ObserveRequest(method string, statusCode int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveRetry records a transport retry attempt.
func (c *Collector) ObserveRetry(method string) {
	c.retries.WithLabelValues(method).Inc()
}

// ObserveTokenFetch records a token request.
func (c *Collector) ObserveTokenFetch(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}

	c.tokenFetches.WithLabelValues(outcome).Inc()
}

// ObserveFieldResolution records how a coordinate pair was resolved.
func (c *Collector) ObserveFieldResolution(outcome string) {
	c.fieldResolutions.WithLabelValues(outcome).Inc()
}
