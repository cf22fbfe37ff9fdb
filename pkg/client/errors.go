package client

import "errors"

var (
	ErrMissingTokenProvider = errors.New("client: auth enabled without a token provider")
	ErrInvalidLogConfig     = errors.New("client: invalid log configuration")
)
