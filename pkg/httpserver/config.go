package httpserver

import "time"

type Config struct {
	Addr            string        `env:"ADDR" yaml:"addr"`                         // Addr is the address the server listens on.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" yaml:"read_timeout"`         // ReadTimeout is the maximum duration for reading the entire request.
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" yaml:"write_timeout"`       // WriteTimeout is the maximum duration before timing out writes of the response.
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" yaml:"idle_timeout"`         // IdleTimeout is how long keep-alive connections wait for the next request.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"` // ShutdownTimeout is the time allowed for graceful shutdown.
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}
