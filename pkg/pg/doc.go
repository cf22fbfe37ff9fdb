// Package pg bootstraps PostgreSQL access with the pgx/v5 driver: a retrying
// pool constructor, goose migrations from an fs.FS, a health probe and error
// classification helpers.
//
//	cfg := pg.DefaultConfig()
//	cfg.ConnectionString = os.Getenv("DATABASE_URL")
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations, cfg, slog.Default()); err != nil {
//	    return err
//	}
//
// Migrate serializes access to goose's package-level settings, so several
// schemas can be migrated from one process.
package pg
