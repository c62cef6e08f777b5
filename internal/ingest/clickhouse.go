package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"
)

const clickHouseSchema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	event_id    UUID,
	received_at DateTime64(3, 'UTC'),
	client_ip   String,
	timestamp   DateTime64(3, 'UTC'),
	session_id  String,
	poi_id      String,
	device_type LowCardinality(String),
	os          LowCardinality(String),
	browser     LowCardinality(String),
	language    LowCardinality(String),
	event_type  LowCardinality(String),
	data        String
) ENGINE = MergeTree
ORDER BY (event_type, timestamp)`

// ClickHouseSink batch-inserts records over the native protocol.
type ClickHouseSink struct {
	conn clickhouse.Conn
}

type ClickHouseOptions struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseSink(ctx context.Context, opts ClickHouseOptions) (*ClickHouseSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "portal-analytics", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	if err := conn.Exec(pingCtx, clickHouseSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create analytics_events: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Str("db", opts.Database).Msg("connected to clickhouse")
	return &ClickHouseSink{conn: conn}, nil
}

func (s *ClickHouseSink) Write(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO analytics_events (%s)", strings.Join(columns, ", ")))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, r := range records {
		if err := batch.Append(r.row()...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append event %s: %w", r.EventID, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	log.Debug().Int("events", len(records)).Msg("inserted analytics events into clickhouse")
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
