package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"unicode/utf8"
)

// MaxMessageLength is the number of characters of a response body kept in a message.
const MaxMessageLength = 512

// Ellipsis is appended to messages truncated at MaxMessageLength.
const Ellipsis = "…"

// HTTP-equivalent statuses used for transport faults.
const (
	StatusClientClosedRequest = 499
	StatusTransportTimeout    = http.StatusGatewayTimeout
	StatusConnectionFailure   = http.StatusServiceUnavailable
)

// FromStatus maps a non-successful HTTP status and its (possibly empty) body to
// a canonical error. The result depends only on its arguments.
func FromStatus(status int, body string) *Error {
	msg, hasBody := bodyMessage(body)

	kind := KindInternalServer
	def := fmt.Sprintf("HTTP %d.", status)
	switch {
	case status == http.StatusBadRequest:
		kind, def = KindValidation, "Bad request."
	case status == http.StatusUnauthorized:
		kind, def = KindUnauthorized, "Unauthorized."
	case status == http.StatusForbidden:
		kind, def = KindUnauthorized, "Forbidden."
	case status == http.StatusNotFound:
		kind, def = KindNotFound, "Resource not found."
	case status == http.StatusRequestTimeout:
		def = "Request timed out."
	case status >= http.StatusInternalServerError:
		def = "Server error."
	}

	if !hasBody {
		msg = def
	}

	return &Error{
		Kind:       kind,
		Status:     status,
		Message:    msg,
		VendorCode: vendorCode(body),
	}
}

// FromTransport maps a fault raised before a response was available.
// A nil err yields nil; an *Error is returned unchanged.
func FromTransport(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var decodeErr *DecodeError
	switch {
	case errors.Is(err, ErrTimeout):
		return Internal(StatusTransportTimeout, "Operation timed out.", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Internal(StatusClientClosedRequest, "Operation canceled or timed out.", err)
	case errors.As(err, &decodeErr):
		return Internal(http.StatusInternalServerError, "Deserialization error: "+decodeErr.Err.Error(), err)
	case IsConnectionFault(err):
		return Internal(StatusConnectionFailure, err.Error(), err)
	default:
		return Internal(http.StatusInternalServerError, err.Error(), err)
	}
}

// IsConnectionFault reports whether err is a low-level network fault, as opposed
// to cancellation, policy timeout or a decoding problem.
func IsConnectionFault(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return false
	}
	if errors.Is(err, ErrDecode) {
		return false
	}
	if errors.Is(err, ErrConnection) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Truncate shortens s to MaxMessageLength characters followed by Ellipsis.
// Strings within the limit are returned unchanged.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxMessageLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxMessageLength]) + Ellipsis
}

func bodyMessage(body string) (string, bool) {
	if strings.TrimSpace(body) == "" {
		return "", false
	}
	return Truncate(body), true
}

// vendorCode extracts an error code from common JSON problem shapes.
func vendorCode(body string) string {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var problem map[string]any
	if err := json.Unmarshal([]byte(trimmed), &problem); err != nil {
		return ""
	}
	for _, key := range []string{"code", "errorCode", "error_code"} {
		if v, ok := problem[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
