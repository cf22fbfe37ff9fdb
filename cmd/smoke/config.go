package main

import (
	"github.com/dmitrymomot/restkit/pkg/client"
	"github.com/dmitrymomot/restkit/pkg/config"
	"github.com/dmitrymomot/restkit/pkg/httpserver"
	"github.com/dmitrymomot/restkit/pkg/pg"
	"github.com/dmitrymomot/restkit/pkg/redis"
	"github.com/dmitrymomot/restkit/pkg/signature"
)

// Config is the smoke service configuration. Every variable is read with the
// RESTKIT_ prefix, so the client section keeps its usual names.
type Config struct {
	ServiceName string            `env:"SERVICE_NAME" yaml:"service_name"`
	Client      client.Config     `yaml:"client"`
	HTTP        httpserver.Config `envPrefix:"HTTP_" yaml:"http"`
	Webhook     signature.Config  `yaml:"webhook"`
	// Redis enables the shared token cache when ConnectionURL is set.
	Redis redis.Config `envPrefix:"REDIS_" yaml:"redis"`
	// Postgres stores webhook events when ConnectionString is set; events
	// are kept in memory otherwise.
	Postgres pg.Config `envPrefix:"PG_" yaml:"postgres"`
	// TraceStdout exports spans of inbound and outbound calls to stdout.
	TraceStdout bool `env:"TRACE_STDOUT" yaml:"trace_stdout"`
}

func defaultConfig() Config {
	return Config{
		ServiceName: "restkit-smoke",
		Client:      client.DefaultConfig(),
		HTTP:        httpserver.DefaultConfig(),
		Webhook:     signature.DefaultConfig(),
		Redis:       redis.DefaultConfig(),
		Postgres:    pg.DefaultConfig(),
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if err := config.LoadEnv(); err != nil {
		return cfg, err
	}
	if path != "" {
		return cfg, config.LoadFile(path, &cfg, client.EnvPrefix)
	}
	return cfg, config.Load(&cfg, client.EnvPrefix)
}
