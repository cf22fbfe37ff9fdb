package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"URL" yaml:"url"`                         // ConnectionURL has the form "redis://:password@localhost:6379/0". Empty disables Redis.
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" yaml:"retry_attempts"`   // RetryAttempts is the number of attempts to reach the server.
	RetryInterval  time.Duration `env:"RETRY_INTERVAL" yaml:"retry_interval"`   // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" yaml:"connect_timeout"` // ConnectTimeout bounds all attempts together.
}

func DefaultConfig() Config {
	return Config{
		RetryAttempts:  3,
		RetryInterval:  time.Second,
		ConnectTimeout: 30 * time.Second,
	}
}
