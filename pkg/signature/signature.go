package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	DefaultSecret = "mySecret"
	DefaultScheme = "Signature"

	// DefaultMaxBodySize bounds how much of a request body Middleware buffers.
	DefaultMaxBodySize int64 = 1 << 20
)

var (
	// ErrBodyTooLarge is reported by Middleware when the body exceeds MaxBodySize.
	ErrBodyTooLarge     = errors.New("webhook body exceeds maximum size")
	ErrReadBody         = errors.New("failed to read webhook body")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Config holds the shared secret and the expected Authorization scheme.
type Config struct {
	Secret      string `env:"WEBHOOK_SECRET" yaml:"secret"`
	Scheme      string `env:"WEBHOOK_SCHEME" yaml:"scheme"`
	MaxBodySize int64  `env:"WEBHOOK_MAX_BODY_SIZE" yaml:"max_body_size"`
}

// DefaultConfig returns the default secret and scheme.
func DefaultConfig() Config {
	return Config{
		Secret:      DefaultSecret,
		Scheme:      DefaultScheme,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// Verifier checks Authorization headers against raw request bodies.
// It is immutable and safe for concurrent use.
type Verifier struct {
	key         []byte
	scheme      string
	maxBodySize int64
}

// New creates a Verifier. An empty scheme falls back to DefaultScheme.
func New(cfg Config) *Verifier {
	scheme := strings.TrimSpace(cfg.Scheme)
	if scheme == "" {
		scheme = DefaultScheme
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}
	return &Verifier{
		key:         []byte(cfg.Secret),
		scheme:      scheme,
		maxBodySize: maxBody,
	}
}

// Verify reports whether header carries a valid signature of body.
// body must be the exact bytes received on the wire.
func (v *Verifier) Verify(header string, body []byte) bool {
	if strings.TrimSpace(header) == "" {
		return false
	}

	idx := strings.IndexByte(header, ' ')
	if idx <= 0 {
		return false
	}

	scheme := strings.TrimSpace(header[:idx])
	if !strings.EqualFold(scheme, v.scheme) {
		return false
	}

	provided := strings.TrimSpace(header[idx+1:])
	if provided == "" {
		return false
	}

	expected := compute(v.key, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToUpper(provided)))
}

// Sign returns the uppercase hex HMAC-SHA256 of body keyed by secret.
func Sign(secret string, body []byte) string {
	return compute([]byte(secret), body)
}

func compute(key, body []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write(body)
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}
