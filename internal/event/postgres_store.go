package event

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vigilhq/vigil/internal/integrity"
	"github.com/vigilhq/vigil/internal/pagination"
	"github.com/vigilhq/vigil/internal/risk"
)

// PostgresStore persists events in PostgreSQL. The event and its paired
// risk snapshot are inserted in a single transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed event store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) AppendWithSnapshot(ctx context.Context, e *Event, snap *risk.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, session_id, event_type, severity, confidence, timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.SessionID, string(e.Type), string(e.Severity), e.Confidence, e.Timestamp, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO risk_scores (id, session_id, score, level, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, snap.ID, snap.SessionID, snap.Score, string(snap.Level), snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert risk snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event admission: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]*Event, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, severity, confidence, timestamp, created_at
		FROM events
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

func (p *PostgresStore) ListPage(ctx context.Context, sessionID string, cur *pagination.Cursor, limit int) ([]*Event, error) {
	var rows *sql.Rows
	var err error
	if cur == nil {
		rows, err = p.db.QueryContext(ctx, `
			SELECT id, session_id, event_type, severity, confidence, timestamp, created_at
			FROM events
			WHERE session_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT $2
		`, sessionID, limit+1)
	} else {
		rows, err = p.db.QueryContext(ctx, `
			SELECT id, session_id, event_type, severity, confidence, timestamp, created_at
			FROM events
			WHERE session_id = $1 AND (created_at, id) > ($2, $3)
			ORDER BY created_at ASC, id ASC
			LIMIT $4
		`, sessionID, cur.CreatedAt, cur.ID, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var e Event
		var eventType, severity string
		if err := rows.Scan(&e.ID, &e.SessionID, &eventType, &severity, &e.Confidence, &e.Timestamp, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = integrity.EventType(eventType)
		e.Severity = integrity.Severity(severity)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return out, nil
}

var _ Store = (*PostgresStore)(nil)
