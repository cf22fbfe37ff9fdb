// Package tracing wires OpenTelemetry into the client pipeline and the
// webhook receiver.
package tracing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/dmitrymomot/restkit/pkg/pipeline"
)

// Init installs a global tracer provider exporting spans to w (stdout when nil)
// and returns its shutdown function.
func Init(serviceName string, w io.Writer, log *slog.Logger) (func(context.Context) error, error) {
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	if log != nil {
		log.Info("OpenTelemetry initialized", slog.String("service", serviceName))
	}
	return tp.Shutdown, nil
}

// Middleware starts a client span for every attempt that reaches it. Placed
// inside the retry layer it yields one span per attempt.
func Middleware(opts ...otelhttp.Option) pipeline.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return otelhttp.NewTransport(next, opts...)
	}
}

// Handler wraps a server handler with a span named operation.
func Handler(h http.Handler, operation string, opts ...otelhttp.Option) http.Handler {
	return otelhttp.NewHandler(h, operation, opts...)
}
