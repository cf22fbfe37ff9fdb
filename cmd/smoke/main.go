// Command smoke runs a small service around the restkit client: it receives
// signed webhooks into an inbox and exposes endpoints that call the remote
// API through the full client pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/restkit/pkg/bearer"
	"github.com/dmitrymomot/restkit/pkg/client"
	"github.com/dmitrymomot/restkit/pkg/httpserver"
	"github.com/dmitrymomot/restkit/pkg/inbox"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/metrics"
	"github.com/dmitrymomot/restkit/pkg/pg"
	"github.com/dmitrymomot/restkit/pkg/redis"
	"github.com/dmitrymomot/restkit/pkg/requestid"
	"github.com/dmitrymomot/restkit/pkg/signature"
	"github.com/dmitrymomot/restkit/pkg/tracing"
)

// tokenCacheTTL stays below the usual one hour access token lifetime.
const tokenCacheTTL = 50 * time.Minute

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := logger.New(
		logger.WithTextFormatter(),
		logger.WithColor(true),
		logger.WithLevel(level),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(requestid.Extractor),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, log); err != nil {
		log.Error("smoke service failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, log *slog.Logger) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.TraceStdout {
		shutdown, err := tracing.Init(cfg.ServiceName, os.Stdout, log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error("tracer shutdown failed", logger.Error(err))
			}
		}()
		cfg.Client.Tracing = true
	}

	var readiness []func(context.Context) error
	collector := metrics.New("restkit")
	opts := []client.Option{client.WithLogger(log), client.WithMetrics(collector)}

	if cfg.Client.Auth.Enabled {
		provider, err := cfg.Client.Auth.Provider()
		if err != nil {
			return err
		}
		if cfg.Redis.ConnectionURL != "" {
			rdb, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer rdb.Close()
			readiness = append(readiness, redis.Healthcheck(rdb))
			provider = bearer.Cached(provider, bearer.NewRedisStore(rdb, ""), cfg.ServiceName, tokenCacheTTL)
			log.Info("token cache enabled", logger.Component("redis"))
		}
		opts = append(opts, client.WithTokenProvider(provider))
	}

	c, err := client.New(cfg.Client, opts...)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	store := inbox.Store(inbox.NewMemory())
	if cfg.Postgres.ConnectionString != "" {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := inbox.Migrate(ctx, pool, log); err != nil {
			return err
		}
		readiness = append(readiness, pg.Healthcheck(pool))
		store = inbox.NewPostgres(pool)
		log.Info("webhook inbox backed by postgres", logger.Component("inbox"))
	}

	a := &app{
		client:   c,
		verifier: signature.New(cfg.Webhook),
		inbox:    store,
		metrics:  collector,
		log:      log,
		now:      time.Now,
	}

	log.Info("smoke service starting",
		slog.String("service", cfg.ServiceName),
		slog.String("api", c.Gateway().BaseURL().String()),
	)
	return httpserver.New(cfg.HTTP, log).Run(ctx, a.routes(readiness...))
}
