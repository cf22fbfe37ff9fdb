package resilience

import "time"

// TimeoutConfig bounds a whole call, retries included.
type TimeoutConfig struct {
	Enabled bool          `env:"ENABLED" yaml:"enabled"`
	Overall time.Duration `env:"OVERALL" yaml:"overall"`
}

// RetryConfig controls the retry budget, backoff and eligibility.
type RetryConfig struct {
	Enabled bool `env:"ENABLED" yaml:"enabled"`
	// MaxAttempts is the number of additional attempts after the first one.
	MaxAttempts int           `env:"MAX_ATTEMPTS" yaml:"max_attempts"`
	BaseDelay   time.Duration `env:"BASE_DELAY" yaml:"base_delay"`
	Jitter      bool          `env:"JITTER" yaml:"jitter"`

	ApplyToNonIdempotentMethods bool `env:"NON_IDEMPOTENT" yaml:"apply_to_non_idempotent_methods"`
	RetryOn500                  bool `env:"ON_500" yaml:"retry_on_500"`
	RespectRetryAfter           bool `env:"RESPECT_RETRY_AFTER" yaml:"respect_retry_after"`

	// MaxRetryAfter caps the wait taken from a Retry-After header.
	MaxRetryAfter time.Duration `env:"MAX_RETRY_AFTER" yaml:"max_retry_after"`
}

// Config composes the timeout and retry policies.
type Config struct {
	Timeout TimeoutConfig `envPrefix:"TIMEOUT_" yaml:"timeout"`
	Retry   RetryConfig   `envPrefix:"RETRY_" yaml:"retry"`
}

// DefaultConfig returns both policies disabled with their documented defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: TimeoutConfig{
			Overall: 15 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:       3,
			BaseDelay:         100 * time.Millisecond,
			Jitter:            true,
			RespectRetryAfter: true,
			MaxRetryAfter:     60 * time.Second,
		},
	}
}

// Enabled reports whether either policy is active.
func (c Config) Enabled() bool {
	return (c.Timeout.Enabled && c.Timeout.Overall > 0) || c.Retry.Enabled
}
