// Package metrics exposes Prometheus counters and histograms for the application.
// Every method is safe to call on a nil *Collector, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "symcheck"

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	Panics       *prometheus.CounterVec

	// Business metrics
	Predictions        *prometheus.CounterVec
	PredictionFailures *prometheus.CounterVec
	Confidence         prometheus.Histogram
	Registrations      *prometheus.CounterVec
	Logins             *prometheus.CounterVec
}

// New creates a collector backed by its own registry, so tests can create many
func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		Panics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_panics_recovered_total",
				Help:      "Handler panics turned into error responses",
			},
			[]string{"method"},
		),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Successful predictions by predicted disease",
			},
			[]string{"disease"},
		),
		PredictionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prediction_failures_total",
				Help:      "Rejected or failed predictions by reason",
			},
			[]string{"reason"},
		),
		Confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "prediction_confidence_percent",
				Help:      "Confidence of successful predictions",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Panics,
		c.Predictions,
		c.PredictionFailures,
		c.Confidence,
		c.Registrations,
		c.Logins,
	)

	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records a completed HTTP request
func (c *Collector) ObserveHTTP(method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObservePanic records a recovered handler panic
func (c *Collector) ObservePanic(method string) {
	if c == nil {
		return
	}
	c.Panics.WithLabelValues(method).Inc()
}

// ObservePrediction records a successful prediction
func (c *Collector) ObservePrediction(disease string, confidence float64) {
	if c == nil {
		return
	}
	c.Predictions.WithLabelValues(disease).Inc()
	c.Confidence.Observe(confidence)
}

// ObservePredictionFailure records a rejected prediction
func (c *Collector) ObservePredictionFailure(reason string) {
	if c == nil {
		return
	}
	c.PredictionFailures.WithLabelValues(reason).Inc()
}

// ObserveRegistration records a registration attempt
func (c *Collector) ObserveRegistration(outcome string) {
	if c == nil {
		return
	}
	c.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveLogin records a login attempt
func (c *Collector) ObserveLogin(outcome string) {
	if c == nil {
		return
	}
	c.Logins.WithLabelValues(outcome).Inc()
}
