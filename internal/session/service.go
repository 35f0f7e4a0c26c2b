package session

import (
	"context"
	"fmt"
	"time"

	"github.com/vigilhq/vigil/internal/idgen"
	"github.com/vigilhq/vigil/internal/logging"
	"github.com/vigilhq/vigil/internal/metrics"
)

// Service implements the session lifecycle state machine on top of a Store.
// Transitions are strict: Start requires CREATED, End requires ACTIVE, and
// ENDED is terminal.
type Service struct {
	store Store
}

// NewService creates a session lifecycle service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create allocates a new session in the CREATED state. It always succeeds
// barring storage failure.
func (s *Service) Create(ctx context.Context) (*Session, error) {
	sess := &Session{
		ID:        idgen.WithPrefix("sess_"),
		Status:    StatusCreated,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	metrics.SessionTransitionsTotal.WithLabelValues("created").Inc()
	logging.L(ctx).Info("session created", "session_id", sess.ID)
	return sess, nil
}

// Start transitions a CREATED session to ACTIVE and stamps started_at.
// Returns ErrNotFound if the session does not exist, ErrInvalidTransition
// if it is not in the CREATED state.
func (s *Service) Start(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch sess.Status {
	case StatusCreated:
		// The only legal predecessor.
	case StatusActive, StatusEnded:
		return nil, fmt.Errorf("%w: cannot start %s session", ErrInvalidTransition, sess.Status)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, sess.Status)
	}

	now := time.Now().UTC()
	sess.Status = StatusActive
	sess.StartedAt = &now
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	metrics.SessionTransitionsTotal.WithLabelValues("started").Inc()
	metrics.ActiveSessions.Inc()
	logging.L(ctx).Info("session started", "session_id", sess.ID)
	return sess, nil
}

// End transitions an ACTIVE session to ENDED and stamps ended_at.
// Returns ErrNotFound if the session does not exist, ErrInvalidTransition
// if it is not ACTIVE (a never-started session cannot be ended).
func (s *Service) End(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch sess.Status {
	case StatusActive:
		// The only legal predecessor.
	case StatusCreated, StatusEnded:
		return nil, fmt.Errorf("%w: cannot end %s session", ErrInvalidTransition, sess.Status)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, sess.Status)
	}

	now := time.Now().UTC()
	sess.Status = StatusEnded
	sess.EndedAt = &now
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	metrics.SessionTransitionsTotal.WithLabelValues("ended").Inc()
	metrics.ActiveSessions.Dec()
	logging.L(ctx).Info("session ended", "session_id", sess.ID)
	return sess, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}
