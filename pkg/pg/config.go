package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"CONN_URL" yaml:"conn_url"`                     // ConnectionString is the connection string to the database.
	MaxOpenConns      int32         `env:"MAX_OPEN_CONNS" yaml:"max_open_conns"`         // MaxOpenConns is the maximum number of open connections to the database.
	MaxIdleConns      int32         `env:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`         // MaxIdleConns is the minimum number of connections kept open.
	HealthCheckPeriod time.Duration `env:"HEALTHCHECK_PERIOD" yaml:"healthcheck_period"` // HealthCheckPeriod is the period between health checks.
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" yaml:"max_conn_idle_time"` // MaxConnIdleTime is the maximum amount of time a connection may be idle to be reused.
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" yaml:"max_conn_lifetime"`   // MaxConnLifetime is the maximum amount of time a connection may be reused.

	RetryAttempts int           `env:"RETRY_ATTEMPTS" yaml:"retry_attempts"` // RetryAttempts is the number of attempts to connect to the database.
	RetryInterval time.Duration `env:"RETRY_INTERVAL" yaml:"retry_interval"` // RetryInterval grows linearly with each failed attempt.

	MigrationsPath  string `env:"MIGRATIONS_PATH" yaml:"migrations_path"`   // MigrationsPath is the migrations directory inside the migration FS.
	MigrationsTable string `env:"MIGRATIONS_TABLE" yaml:"migrations_table"` // MigrationsTable is the name of the table used to store the migration version.
}

// DefaultConfig returns pool limits suited to a small service.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:      10,
		MaxIdleConns:      2,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     3,
		RetryInterval:     time.Second,
		MigrationsPath:    "migrations",
		MigrationsTable:   "schema_migrations",
	}
}
