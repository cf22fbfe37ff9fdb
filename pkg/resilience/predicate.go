package resilience

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dmitrymomot/restkit/pkg/apierror"
)

// IsIdempotent reports whether method is a read-only verb safe to repeat.
func IsIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, "":
		return true
	default:
		return false
	}
}

// transientStatus lists the statuses retried for eligible methods.
var transientStatus = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// verdict is the outcome of the retry predicate for one attempt.
type verdict struct {
	retry      bool
	retryAfter time.Duration
	hasAfter   bool
}

// retryableFault reports whether a transport fault may be retried.
// ctx is the context the attempt ran under.
func retryableFault(ctx context.Context, err error) bool {
	// Caller cancellation and the overall timeout are terminal.
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, apierror.ErrTimeout) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	return apierror.IsConnectionFault(err)
}

func (p *policy) evaluate(ctx context.Context, req *http.Request, resp *http.Response, err error) verdict {
	if err != nil {
		return verdict{retry: retryableFault(ctx, err)}
	}
	if resp == nil {
		return verdict{}
	}
	if !IsIdempotent(req.Method) && !p.retry.ApplyToNonIdempotentMethods {
		return verdict{}
	}

	var v verdict
	if p.retry.RespectRetryAfter {
		if d, ok := ParseRetryAfter(resp.Header.Get("Retry-After"), p.now()); ok && d >= 0 {
			v.retryAfter, v.hasAfter = d, true
		}
	}

	switch {
	case transientStatus[resp.StatusCode]:
		v.retry = true
	case resp.StatusCode == http.StatusInternalServerError && p.retry.RetryOn500:
		v.retry = true
	case v.hasAfter:
		v.retry = true
	}
	return v
}
