package bearer

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/restkit/pkg/pipeline"
)

const prefix = "Bearer "

// TokenProvider returns the current access token. It must observe ctx.
// The token should not include the "Bearer " prefix; one is stripped if present.
type TokenProvider func(ctx context.Context) (string, error)

// Config controls bearer injection.
type Config struct {
	Enabled  bool
	Provider TokenProvider
}

// Middleware returns the auth injector for cfg.
func Middleware(cfg Config) pipeline.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return pipeline.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !cfg.Enabled || cfg.Provider == nil {
				return next.RoundTrip(req)
			}
			// A preset header always wins.
			if req.Header.Get("Authorization") != "" {
				return next.RoundTrip(req)
			}

			token, err := cfg.Provider(req.Context())
			if err != nil {
				pipeline.CloseRequestBody(req)
				return nil, err
			}
			token = Normalize(token)
			if token == "" {
				return next.RoundTrip(req)
			}

			r := req.Clone(req.Context())
			r.Header.Set("Authorization", prefix+token)
			return next.RoundTrip(r)
		})
	}
}

// Normalize trims token and strips one case-insensitive "Bearer " prefix.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= len(prefix) && strings.EqualFold(token[:len(prefix)], prefix) {
		token = strings.TrimSpace(token[len(prefix):])
	}
	return token
}

// Static returns a provider that always yields token.
func Static(token string) TokenProvider {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return token, nil
	}
}
