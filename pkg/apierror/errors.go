package apierror

import "errors"

// Transport fault markers. Pipeline components wrap these so FromTransport can
// classify a fault without inspecting concrete error types.
var (
	// ErrTimeout marks an overall timeout enforced by the resilience policy.
	// It is distinct from caller cancellation.
	ErrTimeout = errors.New("operation timed out")

	// ErrConnection marks a low-level connection fault raised by a custom transport.
	ErrConnection = errors.New("connection failure")

	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("payload decoding failed")
)

// Kind values usable as errors.Is targets.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInternalServer = &Error{Kind: KindInternalServer}
)

// DecodeError wraps a fault raised while decoding a response payload.
type DecodeError struct {
	Err error
}

// Decode wraps err as a decoding fault. A nil err yields nil.
func Decode(err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Err: err}
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
