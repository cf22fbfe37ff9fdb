package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/config"
)

type RetryConfig struct {
	Enabled bool          `env:"ENABLED" yaml:"enabled"`
	Delay   time.Duration `env:"DELAY" yaml:"delay"`
}

type TestConfig struct {
	BaseURL string      `env:"BASE_URL" yaml:"base_url"`
	Workers int         `env:"WORKERS" yaml:"workers"`
	Tags    []string    `env:"TAGS" envSeparator:"," yaml:"tags"`
	Retry   RetryConfig `envPrefix:"RETRY_" yaml:"retry"`
}

type RequiredConfig struct {
	Required string `env:"REQUIRED_VALUE,required"`
}

func defaults() TestConfig {
	return TestConfig{
		BaseURL: "http://localhost:3000/",
		Workers: 2,
		Retry:   RetryConfig{Delay: 100 * time.Millisecond},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_OverlaysEnvironment(t *testing.T) {
	t.Setenv("CFGTEST_WORKERS", "8")
	t.Setenv("CFGTEST_TAGS", "a,b")
	t.Setenv("CFGTEST_RETRY_ENABLED", "true")

	cfg := defaults()
	require.NoError(t, config.Load(&cfg, "CFGTEST_"))

	assert.Equal(t, "http://localhost:3000/", cfg.BaseURL, "unset variables keep defaults")
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.Delay)
}

func TestLoad_Independent(t *testing.T) {
	t.Setenv("ONE_WORKERS", "1")
	t.Setenv("TWO_WORKERS", "2")

	first, second := defaults(), defaults()
	require.NoError(t, config.Load(&first, "ONE_"))
	require.NoError(t, config.Load(&second, "TWO_"))

	assert.Equal(t, 1, first.Workers)
	assert.Equal(t, 2, second.Workers)
}

func TestLoad_Errors(t *testing.T) {
	var cfg RequiredConfig
	assert.ErrorIs(t, config.Load(&cfg, "CFGREQ_"), config.ErrParsingConfig)

	t.Setenv("CFGBAD_WORKERS", "many")
	bad := defaults()
	assert.ErrorIs(t, config.Load(&bad, "CFGBAD_"), config.ErrParsingConfig)

	assert.ErrorIs(t, config.Load[TestConfig](nil, ""), config.ErrNilPointer)
	assert.Panics(t, func() { config.MustLoad(&cfg, "CFGREQ_") })
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
base_url: https://api.example.com/
workers: 4
retry:
  enabled: true
  delay: 250ms
`)
	t.Setenv("CFGFILE_WORKERS", "16")

	cfg := defaults()
	require.NoError(t, config.LoadFile(path, &cfg, "CFGFILE_"))

	assert.Equal(t, "https://api.example.com/", cfg.BaseURL)
	assert.Equal(t, 16, cfg.Workers, "environment wins over the file")
	assert.True(t, cfg.Retry.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := defaults()

	err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), &cfg, "")
	assert.ErrorIs(t, err, config.ErrReadingFile)

	path := writeFile(t, "broken.yaml", "workers: [1, 2")
	assert.ErrorIs(t, config.LoadFile(path, &cfg, ""), config.ErrDecodingFile)
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, ".env", "CFGENV_BASE_URL=http://env-file/\nCFGENV_WORKERS=3\n")
	t.Setenv("CFGENV_WORKERS", "5")
	t.Cleanup(func() { _ = os.Unsetenv("CFGENV_BASE_URL") })

	require.NoError(t, config.LoadEnv(path))

	cfg := defaults()
	require.NoError(t, config.Load(&cfg, "CFGENV_"))
	assert.Equal(t, "http://env-file/", cfg.BaseURL)
	assert.Equal(t, 5, cfg.Workers, "existing variables are not overwritten")
}

func TestLoadEnv_Missing(t *testing.T) {
	err := config.LoadEnv(filepath.Join(t.TempDir(), "absent.env"))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	assert.Panics(t, func() { config.MustLoadEnv(filepath.Join(t.TempDir(), "absent.env")) })

	t.Chdir(t.TempDir())
	assert.NoError(t, config.LoadEnv(), "a missing default .env is ignored")
}
