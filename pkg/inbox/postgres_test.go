package inbox_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/inbox"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/pg"
)

func TestPostgres(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	cfg := pg.DefaultConfig()
	cfg.ConnectionString = url
	cfg.RetryAttempts = 1
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Healthcheck(pool)(ctx))
	require.NoError(t, inbox.Migrate(ctx, pool, logger.Discard()))
	require.NoError(t, inbox.Migrate(ctx, pool, logger.Discard()), "migrations are idempotent")

	_, err = pool.Exec(ctx, "TRUNCATE webhook_events")
	require.NoError(t, err)

	exerciseStore(t, inbox.NewPostgres(pool))
}
