// Package config loads configuration structs from .env files, YAML documents
// and environment variables.
//
// It wraps `github.com/joho/godotenv`, `github.com/caarlos0/env/v11` and
// `gopkg.in/yaml.v3`. Defaults live in Go code: callers start from a
// pre-filled struct and each source overlays the fields it sets. The order is
// YAML file first, then environment variables.
//
// Nothing is cached. Two loads of the same type are independent, so several
// differently configured clients can live in one process.
//
// # Usage
//
//	type Config struct {
//	    BaseURL string        `env:"BASE_URL" yaml:"base_url"`
//	    Timeout time.Duration `env:"TIMEOUT" yaml:"timeout"`
//	}
//
//	cfg := Config{BaseURL: "http://localhost:3000/", Timeout: 15 * time.Second}
//	if err := config.LoadEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := config.LoadFile("restkit.yaml", &cfg, "RESTKIT_"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// Errors wrap one of the sentinels below and can be matched with errors.Is:
//
//   - ErrParsingConfig   failed to parse env vars into struct.
//   - ErrLoadingEnvFile  a .env file could not be loaded.
//   - ErrReadingFile     the YAML file could not be read.
//   - ErrDecodingFile    the YAML file is malformed.
//   - ErrNilPointer      nil pointer passed to a loader.
package config
