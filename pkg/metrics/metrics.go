// Package metrics exports Prometheus instruments for the client pipeline and
// the webhook receiver.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/gateway"
	"github.com/dmitrymomot/restkit/pkg/resilience"
)

// Collector owns the instruments. Each Collector registers with its own
// registry so several clients can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	// RequestsTotal counts responses per method and status code.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration tracks time to response headers per method.
	RequestDuration *prometheus.HistogramVec
	// FaultsTotal counts calls that failed without a response to map: transport
	// faults, cancellation, timeouts and decode failures. Labels are method,
	// canonical status and fault kind.
	FaultsTotal *prometheus.CounterVec
	// RetriesTotal counts scheduled retries per method and reason.
	RetriesTotal *prometheus.CounterVec
	// WebhooksTotal counts inbound webhook verifications per result.
	WebhooksTotal *prometheus.CounterVec
}

// New creates a Collector whose metric names start with namespace.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "restkit"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total number of responses received by the client",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Time until response headers in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		FaultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_faults_total",
				Help:      "Total number of calls that failed without a mappable response, by canonical status and fault kind",
			},
			[]string{"method", "status", "kind"},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_retries_total",
				Help:      "Total number of scheduled retries",
			},
			[]string{"method", "reason"},
		),
		WebhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_verifications_total",
				Help:      "Total number of inbound webhook verifications",
			},
			[]string{"result"},
		),
	}
}

// Diagnostics returns gateway hooks feeding the request instruments.
func (c *Collector) Diagnostics() gateway.Diagnostics {
	return gateway.Diagnostics{
		OnResponse: func(req *http.Request, resp *http.Response, elapsed time.Duration) {
			c.RequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
			c.RequestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
		},
		OnError: func(req *http.Request, err error) {
			status := apierror.FromTransport(err).Status
			c.FaultsTotal.WithLabelValues(req.Method, strconv.Itoa(status), faultKind(err)).Inc()
		},
	}
}

func faultKind(err error) string {
	switch {
	case errors.Is(err, apierror.ErrDecode):
		return "decode"
	case errors.Is(err, apierror.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case apierror.IsConnectionFault(err):
		return "connection"
	default:
		return "other"
	}
}

// OnRetry is a resilience.WithRetryObserver callback.
func (c *Collector) OnRetry(ev resilience.RetryEvent) {
	reason := "fault"
	if ev.Status != 0 {
		reason = strconv.Itoa(ev.Status)
	}
	c.RetriesTotal.WithLabelValues(ev.Method, reason).Inc()
}

// ObserveWebhook records one verification outcome.
func (c *Collector) ObserveWebhook(valid bool) {
	result := "rejected"
	if valid {
		result = "accepted"
	}
	c.WebhooksTotal.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry, for example to add Go runtime collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
