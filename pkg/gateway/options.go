package gateway

import (
	"log/slog"
	"time"
)

// DefaultMaxErrorBody bounds how much of a non-2xx body is read for the error message.
const DefaultMaxErrorBody int64 = 1 << 20

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithCodec replaces the JSON codec used for bodies.
func WithCodec(c Codec) Option {
	return func(g *Gateway) {
		if c != nil {
			g.codec = c
		}
	}
}

// WithDiagnostics installs observability hooks.
func WithDiagnostics(d Diagnostics) Option {
	return func(g *Gateway) {
		g.diag = d
	}
}

// WithMaxErrorBody bounds how much of an error body is read.
func WithMaxErrorBody(n int64) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxErrorBody = n
		}
	}
}

// WithClock overrides the clock used for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}
