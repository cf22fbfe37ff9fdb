package resilience

import "errors"

// ErrBodyReplay is returned when a request body cannot be recreated for a retry.
var ErrBodyReplay = errors.New("resilience: failed to replay request body")
