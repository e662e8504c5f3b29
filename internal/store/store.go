package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ramsbaby/lessonledger/internal/config"
	"github.com/ramsbaby/lessonledger/internal/model"
)

// Archive writes summary runs to the database.
type Archive struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// Connect creates the archive's connection pool and verifies it.
func Connect(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Archive, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Archive{db: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (a *Archive) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// EnsureSchema creates the archive tables if they do not exist yet.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS summary_runs (
			run_id     UUID PRIMARY KEY,
			ran_at     TIMESTAMPTZ NOT NULL,
			krw_total  NUMERIC NOT NULL,
			row_count  INT NOT NULL,
			unmatched  INT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS summary_rows (
			run_id    UUID NOT NULL REFERENCES summary_runs(run_id),
			student   TEXT NOT NULL,
			amount    NUMERIC NOT NULL,
			currency  TEXT NOT NULL
		);`

	if _, err := a.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveRun archives one finished run and its rows in a single batch.
func (a *Archive) SaveRun(ctx context.Context, runID uuid.UUID, ranAt time.Time, res model.Result) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO summary_runs (run_id, ran_at, krw_total, row_count, unmatched)
		VALUES ($1, $2, $3, $4, $5)`,
		runID, ranAt, res.KRWTotal.String(), len(res.Rows), len(res.Unknown),
	)
	for _, row := range res.Rows {
		batch.Queue(`
			INSERT INTO summary_rows (run_id, student, amount, currency)
			VALUES ($1, $2, $3, $4)`,
			runID, row.Student, row.Money.Amount.String(), row.Money.Currency,
		)
	}

	results := a.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("archive run %s: %w", runID, err)
		}
	}

	a.logger.Debug("archived run",
		"run_id", runID,
		"rows", len(res.Rows),
	)
	return nil
}
