// Package resilience implements the timeout and retry policy of the client
// pipeline as a single pipeline.Middleware.
//
// The overall timeout is the outer layer and bounds every retry attempt. When
// it fires the in-flight attempt is canceled and the call fails with
// apierror.ErrTimeout, which is never retried. Caller cancellation is never
// retried either and surfaces as the context error.
//
// Retries replay the request body through GetBody. A response is retried when
// the method is idempotent (or RetryConfig.ApplyToNonIdempotentMethods is set)
// and the status is 408, 429, 502, 503 or 504, 500 when RetryOn500 is set, or
// any status carrying a non-negative Retry-After when RespectRetryAfter is set.
// Connection faults and transport-level deadlines are retried for every method.
//
//	rt := pipeline.Chain(http.DefaultTransport,
//	    resilience.Middleware(resilience.DefaultConfig(), resilience.WithLogger(log)),
//	    bearer.Middleware(authCfg),
//	)
package resilience
