package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/pipeline"
)

// maxDrain bounds how much of an abandoned response body is read before it is
// closed, so the connection can be reused without downloading large payloads.
const maxDrain = 64 << 10

// RetryEvent describes a retry that is about to be scheduled.
type RetryEvent struct {
	Method string
	URL    string
	// Attempt is the 1-based number of the attempt that just failed.
	Attempt int
	Delay   time.Duration
	// Status is zero when the attempt ended with a transport fault.
	Status int
	Err    error
}

// Option configures Middleware.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	onRetry func(RetryEvent)
	backoff BackoffStrategy
	now     func() time.Time
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRetryObserver registers fn to be called before every retry wait.
func WithRetryObserver(fn func(RetryEvent)) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

// WithBackoff overrides the schedule derived from RetryConfig.
func WithBackoff(b BackoffStrategy) Option {
	return func(o *options) {
		if b != nil {
			o.backoff = b
		}
	}
}

// WithClock overrides the clock used to evaluate Retry-After dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Middleware returns the composed timeout and retry policy for cfg.
// The policy is built on first use and shared by all calls through the
// returned middleware. It is immutable once built.
func Middleware(cfg Config, opts ...Option) pipeline.Middleware {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	build := sync.OnceValue(func() *policy { return newPolicy(cfg, o) })

	return func(next http.RoundTripper) http.RoundTripper {
		return pipeline.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return build().roundTrip(next, req)
		})
	}
}

type policy struct {
	timeout    time.Duration
	timeoutErr error
	retry      RetryConfig
	attempts   int
	backoff    BackoffStrategy
	logger     *slog.Logger
	onRetry    func(RetryEvent)
	now        func() time.Time
}

func newPolicy(cfg Config, o *options) *policy {
	p := &policy{
		retry:    cfg.Retry,
		attempts: 1,
		backoff:  o.backoff,
		logger:   logger.OrDiscard(o.logger),
		onRetry:  o.onRetry,
		now:      o.now,
	}
	if cfg.Timeout.Enabled && cfg.Timeout.Overall > 0 {
		p.timeout = cfg.Timeout.Overall
		p.timeoutErr = fmt.Errorf("%w after %s", apierror.ErrTimeout, cfg.Timeout.Overall)
	}
	if cfg.Retry.Enabled && cfg.Retry.MaxAttempts > 0 {
		p.attempts += cfg.Retry.MaxAttempts
	}
	if p.backoff == nil {
		p.backoff = newBackoff(cfg.Retry)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

func (p *policy) roundTrip(next http.RoundTripper, req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		pipeline.CloseRequestBody(req)
		return nil, err
	}
	if p.timeout <= 0 {
		return p.do(ctx, next, req)
	}

	tctx, cancel := context.WithDeadlineCause(ctx, overallDeadline(ctx, p.timeout), p.timeoutErr)
	resp, err := p.do(tctx, next, req)
	if err != nil {
		cancel()
		if p.timedOut(ctx, tctx) {
			return nil, p.timeoutErr
		}
		return nil, err
	}
	if resp.Body == nil {
		cancel()
		return resp, nil
	}
	// The deadline keeps governing the body until the caller closes it.
	resp.Body = &timeoutBody{rc: resp.Body, ctx: tctx, cancel: cancel, p: p, parent: ctx}
	return resp, nil
}

func (p *policy) timedOut(parent, tctx context.Context) bool {
	return parent.Err() == nil && errors.Is(context.Cause(tctx), apierror.ErrTimeout)
}

// do runs the retry loop under ctx.
func (p *policy) do(ctx context.Context, next http.RoundTripper, req *http.Request) (*http.Response, error) {
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	var delays []time.Duration
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if attempt == 1 {
				pipeline.CloseRequestBody(req)
			}
			return nil, err
		}

		r := req
		if attempt > 1 || ctx != req.Context() {
			r = req.Clone(ctx)
		}
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBodyReplay, err)
			}
			r.Body = body
		}

		resp, err := next.RoundTrip(r)
		if attempt >= p.attempts || !replayable {
			return resp, err
		}

		v := p.evaluate(ctx, req, resp, err)
		if !v.retry {
			return resp, err
		}

		if delays == nil {
			delays = p.backoff.Delays(p.attempts - 1)
		}
		var delay time.Duration
		if attempt-1 < len(delays) {
			delay = delays[attempt-1]
		}
		if v.hasAfter {
			after := v.retryAfter
			if p.retry.MaxRetryAfter > 0 {
				after = min(after, p.retry.MaxRetryAfter)
			}
			delay = max(delay, after)
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			drain(resp)
		}
		p.observe(ctx, RetryEvent{
			Method:  req.Method,
			URL:     req.URL.Redacted(),
			Attempt: attempt,
			Delay:   delay,
			Status:  status,
			Err:     err,
		})

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (p *policy) observe(ctx context.Context, ev RetryEvent) {
	p.logger.DebugContext(ctx, "retrying request",
		logger.Component("resilience"),
		logger.Method(ev.Method),
		logger.URL(ev.URL),
		logger.Attempt(ev.Attempt),
		logger.Status(ev.Status),
		logger.Delay(ev.Delay),
		logger.Error(ev.Err),
	)
	if p.onRetry != nil {
		p.onRetry(ev)
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrain)
	_ = resp.Body.Close()
}

// timeoutBody releases the timeout context once the body is closed and reports
// reads cut short by the overall timeout as apierror.ErrTimeout.
type timeoutBody struct {
	rc     io.ReadCloser
	ctx    context.Context
	parent context.Context
	cancel context.CancelFunc
	p      *policy
}

func (b *timeoutBody) Read(buf []byte) (int, error) {
	n, err := b.rc.Read(buf)
	if err != nil && err != io.EOF && b.p.timedOut(b.parent, b.ctx) {
		err = b.p.timeoutErr
	}
	return n, err
}

func (b *timeoutBody) Close() error {
	err := b.rc.Close()
	b.cancel()
	return err
}
