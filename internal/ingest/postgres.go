package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	event_id    UUID PRIMARY KEY,
	received_at TIMESTAMPTZ NOT NULL,
	client_ip   TEXT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL,
	session_id  TEXT NOT NULL,
	poi_id      TEXT NOT NULL,
	device_type TEXT NOT NULL,
	os          TEXT NOT NULL,
	browser     TEXT NOT NULL,
	language    TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	data        JSONB NOT NULL
)`

type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// PostgresSink stores records with COPY.
type PostgresSink struct {
	db   pgConn
	pool *pgxpool.Pool
}

func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresSink{db: pool, pool: pool}
	if err := s.ensureSchema(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("connected to postgres")
	return s, nil
}

func (s *PostgresSink) ensureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create analytics_events: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.row())
	}
	n, err := s.db.CopyFrom(ctx, pgx.Identifier{"analytics_events"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy analytics events: %w", err)
	}
	log.Debug().Int64("events", n).Msg("copied analytics events into postgres")
	return nil
}

func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
