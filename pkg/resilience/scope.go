package resilience

import (
	"context"
	"sync"
	"time"
)

type scopeKey struct{}

// deadlineScope holds the overall deadline fixed by the first call made
// under a scoped context.
type deadlineScope struct {
	once     sync.Once
	deadline time.Time
}

func (s *deadlineScope) fix(d time.Time) time.Time {
	s.once.Do(func() { s.deadline = d })
	return s.deadline
}

// WithSharedDeadline returns a context under which every call through a timeout
// policy uses the deadline set by the first call. http.Client issues redirect
// hops with the caller's context, so one overall timeout covers the whole
// redirect chain instead of restarting on each hop. A context that already
// carries a scope is returned unchanged.
func WithSharedDeadline(ctx context.Context) context.Context {
	if _, ok := ctx.Value(scopeKey{}).(*deadlineScope); ok {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, &deadlineScope{})
}

func overallDeadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if s, ok := ctx.Value(scopeKey{}).(*deadlineScope); ok {
		return s.fix(d)
	}
	return d
}
