package client

import (
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/restkit/pkg/bearer"
	"github.com/dmitrymomot/restkit/pkg/config"
	"github.com/dmitrymomot/restkit/pkg/resilience"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "RESTKIT_"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3000/"

// Config describes one client. Unset fields keep the DefaultConfig values
// when loaded from the environment or a YAML file.
type Config struct {
	BaseURL    string            `env:"BASE_URL" yaml:"base_url"`
	Auth       AuthConfig        `envPrefix:"AUTH_" yaml:"auth"`
	Resilience resilience.Config `yaml:"resilience"`
	// Tracing wraps every attempt in an OpenTelemetry client span.
	Tracing bool      `env:"TRACING" yaml:"tracing"`
	Log     LogConfig `envPrefix:"LOG_" yaml:"log"`
}

// AuthConfig controls bearer token injection. A provider passed with
// WithTokenProvider takes precedence over OAuth2, which takes precedence
// over Token.
type AuthConfig struct {
	Enabled bool         `env:"ENABLED" yaml:"enabled"`
	Token   string       `env:"TOKEN" yaml:"token"`
	OAuth2  OAuth2Config `envPrefix:"OAUTH2_" yaml:"oauth2"`
}

// OAuth2Config enables the client-credentials grant when TokenURL is set.
type OAuth2Config struct {
	ClientID     string   `env:"CLIENT_ID" yaml:"client_id"`
	ClientSecret string   `env:"CLIENT_SECRET" yaml:"client_secret"`
	TokenURL     string   `env:"TOKEN_URL" yaml:"token_url"`
	Scopes       []string `env:"SCOPES" envSeparator:"," yaml:"scopes"`
}

// Provider builds the token provider described by the configuration:
// client credentials when OAuth2.TokenURL is set, otherwise the static Token.
func (c AuthConfig) Provider() (bearer.TokenProvider, error) {
	switch {
	case c.OAuth2.TokenURL != "":
		return bearer.ClientCredentials(clientcredentials.Config{
			ClientID:     c.OAuth2.ClientID,
			ClientSecret: c.OAuth2.ClientSecret,
			TokenURL:     c.OAuth2.TokenURL,
			Scopes:       c.OAuth2.Scopes,
		}), nil
	case c.Token != "":
		return bearer.Static(c.Token), nil
	default:
		return nil, ErrMissingTokenProvider
	}
}

// LogConfig builds a logger when none is passed with WithLogger.
type LogConfig struct {
	Enabled bool   `env:"ENABLED" yaml:"enabled"`
	Level   string `env:"LEVEL" yaml:"level"`
	Format  string `env:"FORMAT" yaml:"format"`
}

// DefaultConfig returns a client for the local API with auth, timeout and
// retry disabled.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Resilience: resilience.DefaultConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads ./.env when present and overlays RESTKIT_* variables
// onto DefaultConfig.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.LoadEnv(); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg, EnvPrefix); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML file onto DefaultConfig and then applies
// RESTKIT_* variables, which win over the file.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.LoadEnv(); err != nil {
		return cfg, err
	}
	if err := config.LoadFile(path, &cfg, EnvPrefix); err != nil {
		return cfg, err
	}
	return cfg, nil
}
