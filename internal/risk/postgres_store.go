package risk

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresSnapshotStore persists the score history in PostgreSQL.
// The risk_scores table is created by the goose migrations.
type PostgresSnapshotStore struct {
	db *sql.DB
}

// NewPostgresSnapshotStore creates a PostgreSQL-backed score history store.
func NewPostgresSnapshotStore(db *sql.DB) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{db: db}
}

func (s *PostgresSnapshotStore) Append(ctx context.Context, snap *Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_scores (id, session_id, score, level, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, snap.ID, snap.SessionID, snap.Score, string(snap.Level), snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append risk snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a session, or nil if the
// session has no score history yet.
func (s *PostgresSnapshotStore) Latest(ctx context.Context, sessionID string) (*Snapshot, error) {
	var snap Snapshot
	var level string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, score, level, created_at
		FROM risk_scores
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, sessionID).Scan(&snap.ID, &snap.SessionID, &snap.Score, &level, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest risk snapshot: %w", err)
	}
	snap.Level = Level(level)
	return &snap, nil
}

var _ SnapshotStore = (*PostgresSnapshotStore)(nil)
