// Package client assembles the request pipeline and exposes the resource APIs.
//
// Each call to New builds an independent pipeline, outermost first:
//
//	resilience (timeout, retry) -> tracing -> bearer -> request id -> Accept -> custom -> transport
//
// The gateway on top maps every failure to an *apierror.Error and wraps
// payloads in an envelope.
package client

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrymomot/restkit/pkg/bearer"
	"github.com/dmitrymomot/restkit/pkg/contacts"
	"github.com/dmitrymomot/restkit/pkg/gateway"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/messages"
	"github.com/dmitrymomot/restkit/pkg/pipeline"
	"github.com/dmitrymomot/restkit/pkg/requestid"
	"github.com/dmitrymomot/restkit/pkg/resilience"
	"github.com/dmitrymomot/restkit/pkg/tracing"
)

// Client is safe for concurrent use.
type Client struct {
	Contacts *contacts.API
	Messages *messages.API

	gw        *gateway.Gateway
	transport http.RoundTripper
}

// New builds a client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	log, err := newLogger(cfg.Log, o.logger)
	if err != nil {
		return nil, err
	}

	provider, err := tokenProvider(cfg.Auth, o.provider)
	if err != nil {
		return nil, err
	}

	mws := []pipeline.Middleware{resilience.Middleware(cfg.Resilience, resilienceOptions(o, log)...)}
	if cfg.Tracing || o.tracingOn {
		mws = append(mws, tracing.Middleware(o.tracing...))
	}
	mws = append(mws,
		bearer.Middleware(bearer.Config{Enabled: cfg.Auth.Enabled, Provider: provider}),
		requestid.Transport(),
		pipeline.Header("Accept", "application/json"),
	)
	mws = append(mws, o.middleware...)
	rt := pipeline.Chain(o.transport, mws...)

	diags := o.diagnostics
	if o.metrics != nil {
		diags = append(diags, o.metrics.Diagnostics())
	}
	gwOpts := []gateway.Option{
		gateway.WithLogger(log),
		gateway.WithDiagnostics(gateway.CombineDiagnostics(diags...)),
	}
	if o.codec != nil {
		gwOpts = append(gwOpts, gateway.WithCodec(o.codec))
	}

	baseURL := cfg.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	gw, err := gateway.New(baseURL, rt, gwOpts...)
	if err != nil {
		return nil, err
	}

	log.Debug("client initialized",
		slog.String("base_url", gw.BaseURL().String()),
		slog.Bool("auth", cfg.Auth.Enabled),
		slog.Bool("timeout", cfg.Resilience.Timeout.Enabled),
		slog.Bool("retry", cfg.Resilience.Retry.Enabled),
	)

	return &Client{
		Contacts:  contacts.New(gw),
		Messages:  messages.New(gw),
		gw:        gw,
		transport: rt,
	}, nil
}

// NewWithToken builds a client for baseURL with auth, timeout and retry
// enabled using their default settings.
func NewWithToken(baseURL string, provider bearer.TokenProvider, opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Auth.Enabled = true
	cfg.Resilience.Timeout.Enabled = true
	cfg.Resilience.Retry.Enabled = true
	return New(cfg, append([]Option{WithTokenProvider(provider)}, opts...)...)
}

// Gateway returns the gateway for endpoints without a dedicated API.
func (c *Client) Gateway() *gateway.Gateway {
	return c.gw
}

// Transport returns the composed pipeline as a plain round tripper.
func (c *Client) Transport() http.RoundTripper {
	return c.transport
}

func resilienceOptions(o *options, log *slog.Logger) []resilience.Option {
	ropts := []resilience.Option{resilience.WithLogger(log)}
	observers := o.observers
	if o.metrics != nil {
		observers = append(observers, o.metrics.OnRetry)
	}
	if len(observers) > 0 {
		ropts = append(ropts, resilience.WithRetryObserver(func(ev resilience.RetryEvent) {
			for _, fn := range observers {
				fn(ev)
			}
		}))
	}
	if o.backoff != nil {
		ropts = append(ropts, resilience.WithBackoff(o.backoff))
	}
	return ropts
}

func tokenProvider(cfg AuthConfig, explicit bearer.TokenProvider) (bearer.TokenProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if explicit != nil {
		return explicit, nil
	}
	return cfg.Provider()
}

func newLogger(cfg LogConfig, explicit *slog.Logger) (*slog.Logger, error) {
	if explicit != nil {
		return explicit, nil
	}
	if !cfg.Enabled {
		return logger.Discard(), nil
	}

	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Join(ErrInvalidLogConfig, err)
	}
	format, err := logger.ParseFormat(cfg.Format)
	if err != nil {
		return nil, errors.Join(ErrInvalidLogConfig, err)
	}

	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
		logger.WithAttr(logger.Component("restkit")),
		logger.WithContextExtractors(requestid.Extractor),
	), nil
}
