package signature

import (
	"bytes"
	"io"
	"net/http"
)

// RejectFunc writes the response for a request Middleware refused. err is one
// of ErrReadBody, ErrBodyTooLarge or ErrInvalidSignature.
type RejectFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

// GuardOption configures Guard.
type GuardOption func(*guard)

type guard struct {
	onVerify func(r *http.Request, valid bool)
	onReject RejectFunc
}

// OnVerify registers fn to be called with the outcome of every signature check.
// It is not called when the body cannot be read or is too large.
func OnVerify(fn func(r *http.Request, valid bool)) GuardOption {
	return func(g *guard) { g.onVerify = fn }
}

// OnReject overrides the plain-text error response.
func OnReject(fn RejectFunc) GuardOption {
	return func(g *guard) {
		if fn != nil {
			g.onReject = fn
		}
	}
}

func defaultReject(w http.ResponseWriter, _ *http.Request, status int, err error) {
	http.Error(w, err.Error(), status)
}

// Middleware rejects requests whose Authorization header does not match the raw
// body with 401. Accepted requests reach next with the body restored.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return v.Guard()(next)
}

// Guard returns Middleware configured with opts, for use with routers that
// take func(http.Handler) http.Handler.
func (v *Verifier) Guard(opts ...GuardOption) func(http.Handler) http.Handler {
	g := &guard{onReject: defaultReject}
	for _, opt := range opts {
		opt(g)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, v.maxBodySize+1))
			_ = r.Body.Close()
			if err != nil {
				g.onReject(w, r, http.StatusBadRequest, ErrReadBody)
				return
			}
			if int64(len(body)) > v.maxBodySize {
				g.onReject(w, r, http.StatusRequestEntityTooLarge, ErrBodyTooLarge)
				return
			}

			valid := v.Verify(r.Header.Get("Authorization"), body)
			if g.onVerify != nil {
				g.onVerify(r, valid)
			}
			if !valid {
				g.onReject(w, r, http.StatusUnauthorized, ErrInvalidSignature)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		})
	}
}
