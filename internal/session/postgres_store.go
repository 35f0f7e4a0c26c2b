package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists sessions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed session store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sessions (id, status, created_at, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, string(s.Status), s.CreatedAt, s.StartedAt, s.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var s Session
	var status string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, status, created_at, started_at, ended_at
		FROM sessions WHERE id = $1
	`, id).Scan(&s.ID, &status, &s.CreatedAt, &s.StartedAt, &s.EndedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.Status = Status(status)
	return &s, nil
}

func (p *PostgresStore) Update(ctx context.Context, s *Session) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE sessions SET status = $1, started_at = $2, ended_at = $3
		WHERE id = $4
	`, string(s.Status), s.StartedAt, s.EndedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
