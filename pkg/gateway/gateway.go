package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/requestid"
	"github.com/dmitrymomot/restkit/pkg/resilience"
)

// Gateway sends requests through a composed RoundTripper. It is safe for
// concurrent use and holds no per-call state.
type Gateway struct {
	baseURL      *url.URL
	client       *http.Client
	codec        Codec
	diag         Diagnostics
	logger       *slog.Logger
	maxErrorBody int64
	now          func() time.Time
}

// New creates a Gateway that resolves relative request URLs against baseURL
// and dispatches through rt. A nil rt uses http.DefaultTransport.
func New(baseURL string, rt http.RoundTripper, opts ...Option) (*Gateway, error) {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if rt == nil {
		rt = http.DefaultTransport
	}

	g := &Gateway{
		baseURL:      base,
		client:       &http.Client{Transport: rt},
		codec:        JSONCodec{},
		logger:       logger.Discard(),
		maxErrorBody: DefaultMaxErrorBody,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Codec returns the codec used for request and response bodies.
func (g *Gateway) Codec() Codec {
	return g.codec
}

// BaseURL returns a copy of the base address.
func (g *Gateway) BaseURL() *url.URL {
	u := *g.baseURL
	return &u
}

// NewRequest builds a request for path relative to the base address. A non-nil
// body is encoded with the gateway codec and can be replayed on retry.
func (g *Gateway) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, apierror.FromTransport(fmt.Errorf("parse request path %q: %w", path, err))
	}
	target := g.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := g.codec.Encode(buf, body); err != nil {
			return nil, apierror.FromTransport(fmt.Errorf("%w: %w", ErrEncodeBody, err))
		}
		reader = bytes.NewReader(buf.Bytes())
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, apierror.FromTransport(err)
	}
	req.Header.Set("Accept", g.codec.ContentType())
	if body != nil {
		req.Header.Set("Content-Type", g.codec.ContentType())
	}
	return req, nil
}

// Send dispatches req and returns an envelope without payload. The response
// body is discarded.
func (g *Gateway) Send(ctx context.Context, req *http.Request) (*Response, error) {
	req, resp, err := g.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	return &Response{
		StatusCode: resp.StatusCode,
		Meta:       buildMeta(requestid.FromResponse(resp), g.now(), nil),
	}, nil
}

// Fetch dispatches req, decodes a successful body with decode and maps the
// intermediate value with mapFn. Pagination and warnings are taken from the
// intermediate value when it implements Pager or Warner.
func Fetch[T, I any](ctx context.Context, g *Gateway, req *http.Request, decode Decoder[I], mapFn func(*I) T) (*Result[T], error) {
	req, resp, err := g.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	data, err := decode(req.Context(), resp.Body)
	if err != nil {
		return nil, g.fail(req, apierror.Decode(err))
	}
	if data == nil {
		mapped := apierror.Internal(http.StatusInternalServerError, emptyPayloadMessage, nil)
		g.logFailure(req, mapped)
		return nil, mapped
	}

	return &Result[T]{
		Data: mapFn(data),
		Meta: buildMeta(requestid.FromResponse(resp), g.now(), data),
	}, nil
}

// dispatch runs req through the pipeline and returns a 2xx response with an
// unread body, or a canonical error.
func (g *Gateway) dispatch(ctx context.Context, req *http.Request) (*http.Request, *http.Response, error) {
	if ctx == nil {
		ctx = req.Context()
	}
	// Redirect hops re-enter the pipeline with this context and share one
	// overall deadline.
	ctx = resilience.WithSharedDeadline(ctx)
	req = g.prepare(ctx, req)

	if err := ctx.Err(); err != nil {
		return req, nil, g.fail(req, err)
	}

	g.onRequest(req)
	g.logger.DebugContext(ctx, "dispatching request",
		logger.Component("gateway"),
		logger.Method(req.Method),
		logger.URL(req.URL.Redacted()),
	)

	start := g.now()
	resp, err := g.client.Do(req)
	if err != nil {
		return req, nil, g.fail(req, unwrapURLError(err))
	}
	elapsed := g.now().Sub(start)
	g.onResponse(req, resp, elapsed)

	g.logger.DebugContext(ctx, "response received",
		logger.Component("gateway"),
		logger.Method(req.Method),
		logger.URL(req.URL.Redacted()),
		logger.Status(resp.StatusCode),
		logger.Duration(elapsed),
		logger.RequestID(requestid.FromResponse(resp)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := g.readProblem(resp)
		closeBody(resp)
		mapped := apierror.FromStatus(resp.StatusCode, body)
		g.logFailure(req, mapped)
		return req, nil, mapped
	}
	return req, resp, nil
}

// prepare binds req to ctx and resolves a relative URL against the base address.
func (g *Gateway) prepare(ctx context.Context, req *http.Request) *http.Request {
	if req.Context() != ctx {
		req = req.WithContext(ctx)
	}
	if !req.URL.IsAbs() {
		req = req.Clone(ctx)
		ref := *req.URL
		ref.Path = strings.TrimPrefix(ref.Path, "/")
		req.URL = g.baseURL.ResolveReference(&ref)
		req.Host = ""
	}
	return req
}

// fail reports a transport-level fault and maps it to a canonical error.
func (g *Gateway) fail(req *http.Request, err error) *apierror.Error {
	g.onError(req, err)
	mapped := apierror.FromTransport(err)
	g.logFailure(req, mapped)
	return mapped
}

func (g *Gateway) logFailure(req *http.Request, err *apierror.Error) {
	g.logger.WarnContext(req.Context(), "request failed",
		logger.Component("gateway"),
		logger.Method(req.Method),
		logger.URL(req.URL.Redacted()),
		logger.Kind(err.Kind.String()),
		logger.Status(err.Status),
		logger.Error(err.Cause),
	)
}

// readProblem reads a bounded error body. A read fault counts as no body.
func (g *Gateway) readProblem(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, g.maxErrorBody))
	if err != nil {
		return ""
	}
	return string(b)
}

func (g *Gateway) onRequest(req *http.Request) {
	if g.diag.OnRequest == nil {
		return
	}
	defer g.recoverHook(req, "on_request")
	g.diag.OnRequest(req)
}

func (g *Gateway) onResponse(req *http.Request, resp *http.Response, elapsed time.Duration) {
	if g.diag.OnResponse == nil {
		return
	}
	defer g.recoverHook(req, "on_response")
	g.diag.OnResponse(req, resp, elapsed)
}

func (g *Gateway) onError(req *http.Request, err error) {
	if g.diag.OnError == nil {
		return
	}
	defer g.recoverHook(req, "on_error")
	g.diag.OnError(req, err)
}

func (g *Gateway) recoverHook(req *http.Request, hook string) {
	if r := recover(); r != nil {
		g.logger.ErrorContext(req.Context(), "diagnostics hook panicked",
			logger.Component("gateway"),
			logger.Event(hook),
			slog.Any("panic", r),
		)
	}
}

// unwrapURLError strips the *url.Error added by http.Client so the underlying
// fault is classified and reported verbatim.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
