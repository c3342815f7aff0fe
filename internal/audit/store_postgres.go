package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists scan events to the scan_events table
// (migrations/0001_scan_events.sql).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const q = `INSERT INTO scan_events (id, status, id_type, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, q, event.ID, event.Status, event.IDType, event.At); err != nil {
		return fmt.Errorf("insert scan event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Event, error) {
	const q = `SELECT id, status, id_type, created_at FROM scan_events ORDER BY created_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Status, &e.IDType, &e.At); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
