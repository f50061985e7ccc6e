package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vrpbench/internal/model"
)

// Postgres mirrors the file log into a table so sweeps can be compared with
// SQL. Optional; enabled by DATABASE_URL or the database_url config key.
type Postgres struct {
	db *sql.DB
}

const recordsSchema = `
CREATE TABLE IF NOT EXISTS benchmark_records (
    id          UUID PRIMARY KEY,
    run_id      UUID NOT NULL,
    instance    TEXT NOT NULL,
    seed        BIGINT NOT NULL,
    budget_sec  INT NOT NULL,
    status      TEXT NOT NULL,
    objective   DOUBLE PRECISION,
    feasible    BOOLEAN NOT NULL DEFAULT FALSE,
    routes      INT,
    iterations  INT,
    gap_pct     DOUBLE PRECISION,
    elapsed_ms  BIGINT NOT NULL,
    err         TEXT NOT NULL DEFAULT '',
    at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS benchmark_records_run_idx ON benchmark_records (run_id, instance, seed);
`

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &Postgres{db: db}
	if err := p.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return p, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, recordsSchema)
	return err
}

func (p *Postgres) Append(ctx context.Context, rec model.Record) error {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO benchmark_records
            (id, run_id, instance, seed, budget_sec, status, objective, feasible, routes, iterations, gap_pct, elapsed_ms, err, at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		id, rec.RunID, rec.Instance, rec.Seed, rec.BudgetSec, string(rec.Status),
		rec.Objective, rec.Feasible, rec.Routes, rec.Iterations, rec.GapPct,
		rec.Elapsed.Milliseconds(), rec.Err, rec.At)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Banner is a no-op; the table keys rows by (run, instance, seed) already.
func (p *Postgres) Banner(_ context.Context, _ string) error { return nil }

func (p *Postgres) Close() error { return p.db.Close() }
