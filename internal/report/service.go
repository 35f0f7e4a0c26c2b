package report

import (
	"context"

	"github.com/vigilhq/vigil/internal/event"
	"github.com/vigilhq/vigil/internal/risk"
	"github.com/vigilhq/vigil/internal/session"
)

// SessionResolver looks up sessions for report requests.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Service assembles reports from the event log and score history.
type Service struct {
	sessions  SessionResolver
	events    event.Store
	engine    *risk.Engine
	snapshots risk.SnapshotStore
}

// NewService creates a report service.
func NewService(sessions SessionResolver, events event.Store, engine *risk.Engine, snapshots risk.SnapshotStore) *Service {
	return &Service{
		sessions:  sessions,
		events:    events,
		engine:    engine,
		snapshots: snapshots,
	}
}

// Full recomputes the session's risk result from its complete event history.
func (s *Service) Full(ctx context.Context, sessionID string) (*risk.Result, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	history, err := s.events.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	records := make([]risk.EventRecord, 0, len(history))
	for _, e := range history {
		records = append(records, risk.EventRecord{Type: e.Type, Timestamp: e.Timestamp})
	}
	return s.engine.Compute(sessionID, records), nil
}

// Latest returns the session's most recent score snapshot. A session with
// no admitted events yet gets a zero-score NORMAL answer rather than an
// error.
func (s *Service) Latest(ctx context.Context, sessionID string) (*risk.Snapshot, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Latest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &risk.Snapshot{
			SessionID: sessionID,
			Score:     0,
			Level:     risk.LevelNormal,
		}, nil
	}
	return snap, nil
}

// Final recomputes the risk result and transforms it into the
// reviewer-facing final report.
func (s *Service) Final(ctx context.Context, sessionID string) (*FinalReport, error) {
	result, err := s.Full(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Build(result), nil
}
