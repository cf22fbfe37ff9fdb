package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/pipeline"
	"github.com/dmitrymomot/restkit/pkg/resilience"
)

// stubTransport answers attempt n (1-based) through respond and records bodies.
type stubTransport struct {
	mu      sync.Mutex
	calls   int
	bodies  []string
	respond func(n int, req *http.Request) (*http.Response, error)
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		s.bodies = append(s.bodies, string(b))
	}
	s.mu.Unlock()
	return s.respond(n, req)
}

func (s *stubTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func statuses(codes ...int) func(int, *http.Request) (*http.Response, error) {
	return func(n int, req *http.Request) (*http.Response, error) {
		code := codes[len(codes)-1]
		if n <= len(codes) {
			code = codes[n-1]
		}
		return response(req, code), nil
	}
}

func response(req *http.Request, code int, header ...string) *http.Response {
	h := http.Header{}
	for i := 0; i+1 < len(header); i += 2 {
		h.Set(header[i], header[i+1])
	}
	return &http.Response{
		StatusCode: code,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(http.StatusText(code))),
		Request:    req,
	}
}

// fastRetry retries immediately so tests stay deterministic.
func fastRetry() resilience.Config {
	cfg := resilience.DefaultConfig()
	cfg.Retry.Enabled = true
	cfg.Retry.Jitter = false
	cfg.Retry.BaseDelay = 0
	return cfg
}

func send(t *testing.T, cfg resilience.Config, stub http.RoundTripper, method string, opts ...resilience.Option) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, "http://api.test/contacts", nil)
	require.NoError(t, err)
	return pipeline.Chain(stub, resilience.Middleware(cfg, opts...)).RoundTrip(req)
}

func TestMiddleware_RetryPredicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		codes     []int
		configure func(*resilience.Config)
		wantCalls int
		wantCode  int
	}{
		{name: "GET 503 then 200", method: http.MethodGet, codes: []int{503, 200}, wantCalls: 2, wantCode: 200},
		{name: "HEAD 408 then 200", method: http.MethodHead, codes: []int{408, 200}, wantCalls: 2, wantCode: 200},
		{name: "OPTIONS 429 then 200", method: http.MethodOptions, codes: []int{429, 200}, wantCalls: 2, wantCode: 200},
		{name: "GET 502 504 then 200", method: http.MethodGet, codes: []int{502, 504, 200}, wantCalls: 3, wantCode: 200},
		{name: "POST 503 is terminal", method: http.MethodPost, codes: []int{503, 200}, wantCalls: 1, wantCode: 503},
		{
			name: "POST 503 retried when opted in", method: http.MethodPost, codes: []int{503, 200},
			configure: func(c *resilience.Config) { c.Retry.ApplyToNonIdempotentMethods = true },
			wantCalls: 2, wantCode: 200,
		},
		{
			name: "DELETE 429 retried when opted in", method: http.MethodDelete, codes: []int{429, 200},
			configure: func(c *resilience.Config) { c.Retry.ApplyToNonIdempotentMethods = true },
			wantCalls: 2, wantCode: 200,
		},
		{name: "GET 500 is terminal by default", method: http.MethodGet, codes: []int{500, 200}, wantCalls: 1, wantCode: 500},
		{
			name: "GET 500 retried with RetryOn500", method: http.MethodGet, codes: []int{500, 200},
			configure: func(c *resilience.Config) { c.Retry.RetryOn500 = true },
			wantCalls: 2, wantCode: 200,
		},
		{
			name: "POST 500 still gated by method", method: http.MethodPost, codes: []int{500, 200},
			configure: func(c *resilience.Config) { c.Retry.RetryOn500 = true },
			wantCalls: 1, wantCode: 500,
		},
		{name: "GET 404 is terminal", method: http.MethodGet, codes: []int{404, 200}, wantCalls: 1, wantCode: 404},
		{name: "GET 400 is terminal", method: http.MethodGet, codes: []int{400, 200}, wantCalls: 1, wantCode: 400},
		{name: "budget exhausted", method: http.MethodGet, codes: []int{503}, wantCalls: 4, wantCode: 503},
		{
			name: "retry disabled", method: http.MethodGet, codes: []int{503, 200},
			configure: func(c *resilience.Config) { c.Retry.Enabled = false },
			wantCalls: 1, wantCode: 503,
		},
		{
			name: "custom budget", method: http.MethodGet, codes: []int{503},
			configure: func(c *resilience.Config) { c.Retry.MaxAttempts = 1 },
			wantCalls: 2, wantCode: 503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := fastRetry()
			if tt.configure != nil {
				tt.configure(&cfg)
			}
			stub := &stubTransport{respond: statuses(tt.codes...)}

			resp, err := send(t, cfg, stub, tt.method)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, stub.Calls())
		})
	}
}

func TestMiddleware_RetryAfter(t *testing.T) {
	t.Parallel()

	t.Run("zero wait makes any error status eligible", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
			if n == 1 {
				return response(req, http.StatusTeapot, "Retry-After", "0"), nil
			}
			return response(req, http.StatusOK), nil
		}}
		resp, err := send(t, fastRetry(), stub, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, stub.Calls())
	})

	t.Run("ignored when not respected", func(t *testing.T) {
		t.Parallel()

		cfg := fastRetry()
		cfg.Retry.RespectRetryAfter = false
		stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
			return response(req, http.StatusTeapot, "Retry-After", "0"), nil
		}}
		resp, err := send(t, cfg, stub, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("past date is not eligible", func(t *testing.T) {
		t.Parallel()

		past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
		stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
			return response(req, http.StatusTeapot, "Retry-After", past), nil
		}}
		resp, err := send(t, fastRetry(), stub, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("any status with retry-after is retried", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusAccepted, http.StatusMultipleChoices} {
			stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
				if n == 1 {
					return response(req, status, "Retry-After", "0"), nil
				}
				return response(req, http.StatusOK), nil
			}}
			resp, err := send(t, fastRetry(), stub, http.MethodGet)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode, "status %d", status)
			assert.Equal(t, 2, stub.Calls(), "status %d", status)
		}
	})

	t.Run("success without retry-after is final", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
			return response(req, http.StatusOK), nil
		}}
		_, err := send(t, fastRetry(), stub, http.MethodGet)
		require.NoError(t, err)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("wait is capped", func(t *testing.T) {
		t.Parallel()

		cfg := fastRetry()
		cfg.Retry.MaxRetryAfter = 30 * time.Millisecond
		stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
			if n == 1 {
				return response(req, http.StatusServiceUnavailable, "Retry-After", "3600"), nil
			}
			return response(req, http.StatusOK), nil
		}}

		start := time.Now()
		resp, err := send(t, cfg, stub, http.MethodGet)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
		assert.Less(t, elapsed, 2*time.Second)
	})
}

func TestMiddleware_ZeroDelayIsFast(t *testing.T) {
	t.Parallel()

	cfg := fastRetry()
	cfg.Retry.MaxAttempts = 1
	stub := &stubTransport{respond: statuses(503, 200)}

	start := time.Now()
	resp, err := send(t, cfg, stub, http.MethodGet)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, stub.Calls())
	assert.Less(t, elapsed, 50*time.Millisecond)
}

func TestMiddleware_BodyReplay(t *testing.T) {
	t.Parallel()

	t.Run("replays through GetBody", func(t *testing.T) {
		t.Parallel()

		cfg := fastRetry()
		cfg.Retry.ApplyToNonIdempotentMethods = true
		stub := &stubTransport{respond: statuses(503, 503, 201)}

		req, err := http.NewRequest(http.MethodPost, "http://api.test/messages", strings.NewReader(`{"to":"+100"}`))
		require.NoError(t, err)

		resp, err := pipeline.Chain(stub, resilience.Middleware(cfg)).RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, []string{`{"to":"+100"}`, `{"to":"+100"}`, `{"to":"+100"}`}, stub.bodies)
	})

	t.Run("body without GetBody is sent once", func(t *testing.T) {
		t.Parallel()

		cfg := fastRetry()
		cfg.Retry.ApplyToNonIdempotentMethods = true
		stub := &stubTransport{respond: statuses(503, 200)}

		req, err := http.NewRequest(http.MethodPut, "http://api.test/messages/1", io.NopCloser(strings.NewReader("x")))
		require.NoError(t, err)
		require.Nil(t, req.GetBody)

		resp, err := pipeline.Chain(stub, resilience.Middleware(cfg)).RoundTrip(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("replay failure surfaces", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{respond: statuses(503, 200)}
		req, err := http.NewRequest(http.MethodGet, "http://api.test/contacts", strings.NewReader("q"))
		require.NoError(t, err)
		req.GetBody = func() (io.ReadCloser, error) { return nil, errors.New("gone") }

		_, err = pipeline.Chain(stub, resilience.Middleware(fastRetry())).RoundTrip(req)
		assert.ErrorIs(t, err, resilience.ErrBodyReplay)
		assert.Equal(t, 1, stub.Calls())
	})
}

func TestMiddleware_Faults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		fault     error
		wantCalls int
	}{
		{name: "connection refused", method: http.MethodGet, fault: syscall.ECONNREFUSED, wantCalls: 2},
		{name: "connection fault on POST", method: http.MethodPost, fault: fmt.Errorf("dial: %w", apierror.ErrConnection), wantCalls: 2},
		{name: "unexpected EOF", method: http.MethodGet, fault: io.ErrUnexpectedEOF, wantCalls: 2},
		{name: "transport deadline", method: http.MethodGet, fault: context.DeadlineExceeded, wantCalls: 2},
		{name: "caller cancellation", method: http.MethodGet, fault: context.Canceled, wantCalls: 1},
		{name: "token provider failure", method: http.MethodGet, fault: errors.New("token vault unavailable"), wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
				if n == 1 {
					return nil, tt.fault
				}
				return response(req, http.StatusOK), nil
			}}

			resp, err := send(t, fastRetry(), stub, tt.method)
			assert.Equal(t, tt.wantCalls, stub.Calls())
			if tt.wantCalls == 1 {
				assert.ErrorIs(t, err, tt.fault)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestMiddleware_Timeout(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := fastRetry()
	cfg.Timeout.Enabled = true
	cfg.Timeout.Overall = 50 * time.Millisecond

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	start := time.Now()
	resp, err := pipeline.Chain(srv.Client().Transport, resilience.Middleware(cfg)).RoundTrip(req)
	elapsed := time.Since(start)

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrTimeout)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, int32(1), hits.Load())

	mapped := apierror.FromTransport(err)
	assert.Equal(t, apierror.StatusTransportTimeout, mapped.Status)
}

func TestMiddleware_TimeoutGovernsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := resilience.DefaultConfig()
	cfg.Timeout.Enabled = true
	cfg.Timeout.Overall = 50 * time.Millisecond

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := pipeline.Chain(srv.Client().Transport, resilience.Middleware(cfg)).RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	_, err = io.ReadAll(resp.Body)
	assert.ErrorIs(t, err, apierror.ErrTimeout)
}

type closeTracker struct {
	io.Reader
	closed atomic.Bool
}

func (c *closeTracker) Close() error {
	c.closed.Store(true)
	return nil
}

func TestMiddleware_Cancellation(t *testing.T) {
	t.Parallel()

	t.Run("before dispatch", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{respond: statuses(200)}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := fastRetry()
		cfg.Timeout.Enabled = true

		body := &closeTracker{Reader: strings.NewReader(`{"to":"c-2"}`)}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://api.test/messages", body)
		require.NoError(t, err)

		_, err = pipeline.Chain(stub, resilience.Middleware(cfg)).RoundTrip(req)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, apierror.ErrTimeout)
		assert.Equal(t, 0, stub.Calls())
		assert.True(t, body.closed.Load(), "request body must be closed")
	})

	t.Run("during backoff", func(t *testing.T) {
		t.Parallel()

		cfg := fastRetry()
		cfg.Retry.BaseDelay = 5 * time.Second
		stub := &stubTransport{respond: statuses(503, 200)}

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://api.test/contacts", nil)
		require.NoError(t, err)

		start := time.Now()
		resp, err := pipeline.Chain(stub, resilience.Middleware(cfg)).RoundTrip(req)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 1, stub.Calls())
	})

	t.Run("overall timeout during backoff", func(t *testing.T) {
		t.Parallel()

		cfg := fastRetry()
		cfg.Retry.BaseDelay = 5 * time.Second
		cfg.Timeout.Enabled = true
		cfg.Timeout.Overall = 30 * time.Millisecond
		stub := &stubTransport{respond: statuses(503, 200)}

		_, err := send(t, cfg, stub, http.MethodGet)
		assert.ErrorIs(t, err, apierror.ErrTimeout)
		assert.Equal(t, 1, stub.Calls())
	})
}

func TestMiddleware_RetryObserver(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		events []resilience.RetryEvent
	)
	observer := func(ev resilience.RetryEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	stub := &stubTransport{respond: statuses(503, 502, 200)}
	resp, err := send(t, fastRetry(), stub, http.MethodGet, resilience.WithRetryObserver(observer))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Attempt)
	assert.Equal(t, 503, events[0].Status)
	assert.Equal(t, 2, events[1].Attempt)
	assert.Equal(t, 502, events[1].Status)
	assert.Equal(t, http.MethodGet, events[0].Method)
	assert.Equal(t, "http://api.test/contacts", events[0].URL)
}

func TestMiddleware_CustomBackoff(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	stub := &stubTransport{respond: statuses(503, 503, 200)}
	_, err := send(t, fastRetry(), stub, http.MethodGet,
		resilience.WithBackoff(resilience.ConstantBackoff{Interval: time.Millisecond}),
		resilience.WithRetryObserver(func(ev resilience.RetryEvent) { delays = append(delays, ev.Delay) }),
	)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, delays)
}

func TestMiddleware_Concurrent(t *testing.T) {
	t.Parallel()

	stub := &stubTransport{respond: func(n int, req *http.Request) (*http.Response, error) {
		return response(req, http.StatusOK), nil
	}}
	rt := pipeline.Chain(stub, resilience.Middleware(fastRetry()))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, "http://api.test/contacts", nil)
			resp, err := rt.RoundTrip(req)
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, stub.Calls())
}
