package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lib/pq"

	"github.com/skywatchd/skywatch/source"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS matched_events (
	id         TEXT PRIMARY KEY,
	did        TEXT NOT NULL,
	kind       TEXT NOT NULL,
	time_us    BIGINT NOT NULL,
	filters    TEXT[] NOT NULL DEFAULT '{}',
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertEvent = `
INSERT INTO matched_events (id, did, kind, time_us, filters, payload)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

// PostgresSink persists matched events into a matched_events table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createEventsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Write(ctx context.Context, events []*source.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEvent)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.ID, err)
		}
		filters := event.Matches
		if filters == nil {
			filters = []string{}
		}
		if _, err := stmt.ExecContext(ctx, event.ID, event.Did, string(event.Kind), event.TimeUS, pq.Array(filters), payload); err != nil {
			return fmt.Errorf("insert event %s: %w", event.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresSink) Flush(ctx context.Context) error {
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}

func (s *PostgresSink) Type() string {
	return "postgres"
}

var _ Sink = (*PostgresSink)(nil)
