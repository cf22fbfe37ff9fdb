package gateway

import (
	"net/http"
	"time"
)

// Diagnostics are observability callbacks. Hooks must not consume the
// response body. A panicking hook is recovered and logged.
type Diagnostics struct {
	// OnRequest runs immediately before dispatch.
	OnRequest func(req *http.Request)
	// OnResponse runs as soon as response headers are available.
	OnResponse func(req *http.Request, resp *http.Response, elapsed time.Duration)
	// OnError runs before a transport-level fault is mapped and returned.
	OnError func(req *http.Request, err error)
}

// CombineDiagnostics fans each hook out to every non-nil hook in ds, in order.
func CombineDiagnostics(ds ...Diagnostics) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.OnRequest != nil {
			prev, next := out.OnRequest, d.OnRequest
			out.OnRequest = func(req *http.Request) {
				if prev != nil {
					prev(req)
				}
				next(req)
			}
		}
		if d.OnResponse != nil {
			prev, next := out.OnResponse, d.OnResponse
			out.OnResponse = func(req *http.Request, resp *http.Response, elapsed time.Duration) {
				if prev != nil {
					prev(req, resp, elapsed)
				}
				next(req, resp, elapsed)
			}
		}
		if d.OnError != nil {
			prev, next := out.OnError, d.OnError
			out.OnError = func(req *http.Request, err error) {
				if prev != nil {
					prev(req, err)
				}
				next(req, err)
			}
		}
	}
	return out
}
