package bearer

import "errors"

var (
	ErrNilTokenSource = errors.New("bearer: nil oauth2 token source")
	ErrTokenFetch     = errors.New("bearer: failed to fetch token")
	ErrStoreFailure   = errors.New("bearer: token store failure")
)

// ErrCacheMiss is returned by a Store when no live token is stored under a key.
var ErrCacheMiss = errors.New("bearer: token not cached")
