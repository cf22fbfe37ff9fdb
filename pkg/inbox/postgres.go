package inbox

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/restkit/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsTable tracks the inbox schema version.
const MigrationsTable = "inbox_schema_migrations"

// Migrate creates or upgrades the inbox schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	cfg := pg.DefaultConfig()
	cfg.MigrationsPath = "migrations"
	cfg.MigrationsTable = MigrationsTable
	return pg.Migrate(ctx, pool, migrations, cfg, log)
}

// Postgres is a Store backed by the webhook_events table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

type eventRow struct {
	ID         uuid.UUID `db:"id"`
	RequestID  string    `db:"request_id"`
	Body       []byte    `db:"body"`
	ReceivedAt time.Time `db:"received_at"`
}

func (r eventRow) event() Event {
	return Event{ID: r.ID, RequestID: r.RequestID, Body: r.Body, ReceivedAt: r.ReceivedAt.UTC()}
}

func (p *Postgres) Save(ctx context.Context, e Event) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO webhook_events (id, request_id, body, received_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.RequestID, e.Body, e.ReceivedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, request_id, body, received_at FROM webhook_events WHERE id = $1`, id)
	if err != nil {
		return Event{}, err
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[eventRow])
	if pg.IsNotFoundError(err) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, err
	}
	return row.event(), nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, request_id, body, received_at FROM webhook_events ORDER BY received_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(collected))
	for _, r := range collected {
		out = append(out, r.event())
	}
	return out, nil
}
