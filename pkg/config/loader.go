package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadEnv loads .env files into the process environment. Variables that are
// already set are never overwritten. Without arguments it loads ./.env and
// ignores a missing file.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadingEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(err)
	}
}

// Load overlays environment variables onto v. Every variable name is prefixed
// with prefix. Fields whose variables are unset keep their current values, so
// callers pass a struct pre-filled with defaults.
//
// Example:
//
//	cfg := client.DefaultConfig()
//	if err := config.Load(&cfg, "RESTKIT_"); err != nil {
//		return err
//	}
func Load[T any](v *T, prefix string) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.ParseWithOptions(v, env.Options{Prefix: prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadFile decodes the YAML document at path into v and then applies Load,
// so environment variables take precedence over the file.
func LoadFile[T any](path string, v *T, prefix string) error {
	if v == nil {
		return ErrNilPointer
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return errors.Join(ErrDecodingFile, err)
	}
	return Load(v, prefix)
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](v *T, prefix string) {
	if err := Load(v, prefix); err != nil {
		panic(err)
	}
}
