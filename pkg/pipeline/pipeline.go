// Package pipeline composes client-side HTTP middleware around a terminal
// transport.
//
// A Middleware is a func(next http.RoundTripper) http.RoundTripper. Chain applies
// middleware so that the first one listed is the outermost:
//
//	rt := pipeline.Chain(http.DefaultTransport,
//	    resilience.Middleware(cfg),   // outermost: timeout, then retry
//	    bearer.Middleware(authCfg),   // closest to the transport
//	)
//
// Order is significant and preserved exactly as given.
package pipeline

import "net/http"

// Middleware wraps a RoundTripper with a cross-cutting policy.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps terminal with mws. mws[0] becomes the outermost layer.
// Nil middleware entries are skipped; a nil terminal defaults to http.DefaultTransport.
func Chain(terminal http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if terminal == nil {
		terminal = http.DefaultTransport
	}
	rt := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		rt = mws[i](rt)
	}
	return rt
}

// Header returns a middleware that sets key to value on every outgoing request
// that does not already carry it.
func Header(key, value string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(key) != "" {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set(key, value)
			return next.RoundTrip(r)
		})
	}
}

// CloseRequestBody closes req.Body. Middleware that returns an error without
// calling next must close the body, as RoundTrip would.
func CloseRequestBody(req *http.Request) {
	if req != nil && req.Body != nil {
		_ = req.Body.Close()
	}
}
