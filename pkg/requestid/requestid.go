package requestid

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/dmitrymomot/restkit/pkg/pipeline"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

type contextKey struct{}

// WithContext returns a copy of ctx carrying id.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the id stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// FromResponse returns the id echoed by the server, or an empty string.
func FromResponse(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header.Get(Header)
}

// Valid reports whether id is non-empty, at most 128 characters and made of
// letters, digits, dashes and underscores.
func Valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}

// New generates a request id.
func New() string {
	return uuid.NewString()
}

// Extractor is a logger.ContextExtractor that logs the context request id.
func Extractor(ctx context.Context) (slog.Attr, bool) {
	if id := FromContext(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}

// Middleware assigns a request id to every inbound request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !Valid(id) {
			id = New()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

// Transport returns a client middleware that sets the request id header on
// outgoing requests. A header already present on the request is kept.
func Transport() pipeline.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return pipeline.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(Header) != "" {
				return next.RoundTrip(req)
			}
			id := FromContext(req.Context())
			if !Valid(id) {
				id = New()
			}
			r := req.Clone(req.Context())
			r.Header.Set(Header, id)
			return next.RoundTrip(r)
		})
	}
}
