package gateway

import "errors"

var (
	ErrInvalidBaseURL = errors.New("gateway: base URL must be absolute")
	ErrEncodeBody     = errors.New("gateway: failed to encode request body")
)

// emptyPayloadMessage is reported when a successful body decodes to nothing.
const emptyPayloadMessage = "deserialization returned null/empty"
