package client

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmitrymomot/restkit/pkg/bearer"
	"github.com/dmitrymomot/restkit/pkg/gateway"
	"github.com/dmitrymomot/restkit/pkg/metrics"
	"github.com/dmitrymomot/restkit/pkg/pipeline"
	"github.com/dmitrymomot/restkit/pkg/resilience"
)

// Option configures the parts of a client that cannot be serialized.
type Option func(*options)

type options struct {
	provider    bearer.TokenProvider
	transport   http.RoundTripper
	logger      *slog.Logger
	diagnostics []gateway.Diagnostics
	middleware  []pipeline.Middleware
	codec       gateway.Codec
	metrics     *metrics.Collector
	observers   []func(resilience.RetryEvent)
	backoff     resilience.BackoffStrategy
	tracing     []otelhttp.Option
	tracingOn   bool
}

// WithTokenProvider sets the bearer token source.
func WithTokenProvider(p bearer.TokenProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithTransport replaces http.DefaultTransport as the innermost round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithLogger sets the logger shared by the gateway and the resilience policy.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDiagnostics adds gateway hooks. It can be given several times.
func WithDiagnostics(d gateway.Diagnostics) Option {
	return func(o *options) { o.diagnostics = append(o.diagnostics, d) }
}

// WithMiddleware adds middleware next to the transport, inside auth and
// request id injection.
func WithMiddleware(mws ...pipeline.Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mws...) }
}

// WithCodec replaces the JSON codec.
func WithCodec(c gateway.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithMetrics feeds request, fault and retry instruments of c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithRetryObserver is called before every retry.
func WithRetryObserver(fn func(resilience.RetryEvent)) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// WithBackoff replaces the retry delay schedule.
func WithBackoff(b resilience.BackoffStrategy) Option {
	return func(o *options) { o.backoff = b }
}

// WithTracing enables client spans regardless of Config.Tracing.
func WithTracing(opts ...otelhttp.Option) Option {
	return func(o *options) {
		o.tracingOn = true
		o.tracing = append(o.tracing, opts...)
	}
}
