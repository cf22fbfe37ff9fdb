package apierror

import (
	"errors"
	"fmt"
)

// Kind is the discriminant of the canonical error taxonomy.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindUnauthorized   Kind = "unauthorized"
	KindNotFound       Kind = "not_found"
	KindInternalServer Kind = "internal_server"
)

func (k Kind) String() string {
	return string(k)
}

// Error is the single error type that crosses the pipeline boundary.
type Error struct {
	Kind Kind
	// Status is the response status code, or an HTTP-equivalent code for
	// transport faults (499 cancellation, 503 connection, 504 timeout).
	Status     int
	Message    string
	VendorCode string
	Cause      error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with a
// non-zero Status must also match the status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

// KindOf returns the kind of err, or an empty Kind if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusOf returns the status carried by err, or 0 if err is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsInternal(err error) bool {
	return KindOf(err) == KindInternalServer
}

// Internal builds an internal-server error with the given status and message.
func Internal(status int, message string, cause error) *Error {
	return &Error{
		Kind:    KindInternalServer,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}
