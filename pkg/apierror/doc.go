// Package apierror defines the canonical error taxonomy returned by every restkit
// pipeline call and the pure functions that map HTTP outcomes onto it.
//
// Callers never see raw transport or serialization faults. Every failure that
// crosses the gateway boundary is a *Error carrying one of four kinds together
// with the numeric HTTP status (or an HTTP-equivalent status for transport
// faults) and, when available, the underlying cause.
//
// # Kinds
//
//	KindValidation      400
//	KindUnauthorized    401, 403
//	KindNotFound        404
//	KindInternalServer  everything else, including timeouts, cancellation,
//	                    connection faults and decoding failures
//
// # Status mapping
//
// FromStatus maps a non-successful response. The response body, when present and
// not blank, becomes the message (truncated to 512 characters followed by a single
// "…"). Otherwise a status-specific default message is used.
//
//	err := apierror.FromStatus(resp.StatusCode, body)
//	if apierror.IsNotFound(err) {
//	    // ...
//	}
//
// # Transport mapping
//
// FromTransport maps faults raised before a response was available:
//
//	ErrTimeout                       → 504 "Operation timed out."
//	context.Canceled / DeadlineExceeded → 499 "Operation canceled or timed out."
//	connection faults (ErrConnection, net.Error, ECONNREFUSED, …) → 503, message verbatim
//	*DecodeError                     → 500 "Deserialization error: …"
//	anything else                    → 500, message verbatim
//
// Errors that already are *Error pass through unchanged, so mapping is safe to
// apply more than once.
//
// # Matching
//
// *Error implements Is by kind, so the exported kind values work with errors.Is:
//
//	if errors.Is(err, apierror.ErrUnauthorized) {
//	    // refresh credentials
//	}
package apierror
