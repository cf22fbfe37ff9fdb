// Package bearer injects "Authorization: Bearer <token>" into outgoing requests.
//
// Middleware resolves a token through a pluggable TokenProvider on every request
// and never caches it itself. Precedence is fixed:
//
//  1. Auth disabled: the request passes through untouched.
//  2. The request already carries an Authorization header: it always wins and the
//     provider is not called. Callers use this to override credentials per call or
//     to use another scheme.
//  3. Otherwise the provider is called with the request context. Its result is
//     trimmed and a redundant case-insensitive "Bearer " prefix is stripped. Only a
//     non-empty token is set.
//
// Provider errors and context cancellation propagate unchanged. There is no retry
// or suppression at this layer.
//
// # Providers
//
//	bearer.Static("token")                  // fixed token
//	bearer.FromTokenSource(ts)              // any golang.org/x/oauth2 TokenSource
//	bearer.ClientCredentials(ccConfig)      // OAuth2 client-credentials grant
//	bearer.Cached(p, store, "key", ttl)     // caching decorator (MemoryStore, RedisStore)
//
// # Usage
//
//	rt := pipeline.Chain(http.DefaultTransport,
//	    bearer.Middleware(bearer.Config{
//	        Enabled:  true,
//	        Provider: bearer.Static(os.Getenv("API_TOKEN")),
//	    }),
//	)
package bearer
