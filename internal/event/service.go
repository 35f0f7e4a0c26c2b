package event

import (
	"context"
	"fmt"
	"time"

	"github.com/vigilhq/vigil/internal/idgen"
	"github.com/vigilhq/vigil/internal/integrity"
	"github.com/vigilhq/vigil/internal/logging"
	"github.com/vigilhq/vigil/internal/metrics"
	"github.com/vigilhq/vigil/internal/pagination"
	"github.com/vigilhq/vigil/internal/risk"
	"github.com/vigilhq/vigil/internal/session"
	"github.com/vigilhq/vigil/internal/syncutil"
	"github.com/vigilhq/vigil/internal/traces"
)

// SessionResolver looks up the target session for an admission attempt.
// *session.Service satisfies it.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Emitter publishes admission outcomes to live subscribers (websocket hub,
// webhook dispatcher). Implementations must not block; nil-safe via WithEmitter.
type Emitter interface {
	EventAdmitted(e *Event, r *risk.Result)
	RiskLevelChanged(sessionID string, r *risk.Result)
}

// AdmitInput is one event submission before validation.
type AdmitInput struct {
	SessionID  string    `json:"session_id"`
	Type       string    `json:"event_type"`
	Severity   string    `json:"severity"`
	Confidence *float64  `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Service runs the admission pipeline. Admissions for the same session are
// serialized through a per-session lock so each snapshot reflects a
// consistent event history.
type Service struct {
	store     Store
	sessions  SessionResolver
	engine    *risk.Engine
	snapshots risk.SnapshotStore
	locks     *syncutil.ContextShardedMutex
	emitter   Emitter
}

// NewService creates an event admission service.
func NewService(store Store, sessions SessionResolver, engine *risk.Engine, snapshots risk.SnapshotStore) *Service {
	return &Service{
		store:     store,
		sessions:  sessions,
		engine:    engine,
		snapshots: snapshots,
		locks:     syncutil.NewContextShardedMutex(),
	}
}

// WithEmitter sets the outcome emitter.
func (s *Service) WithEmitter(e Emitter) *Service {
	s.emitter = e
	return s
}

// Admit validates and persists one integrity event, recomputes the session's
// risk from its full history, and appends a score snapshot. Returns the
// stored event and the fresh risk result.
//
// Error contract: session.ErrNotFound for an unknown session,
// ErrSessionNotActive when the session is not ACTIVE, ErrInvalidPayload
// (wrapped with detail) for malformed submissions.
func (s *Service) Admit(ctx context.Context, in AdmitInput) (*Event, *risk.Result, error) {
	if err := validateInput(in); err != nil {
		metrics.EventsRejectedTotal.WithLabelValues("validation").Inc()
		return nil, nil, err
	}

	ctx, span := traces.StartSpan(ctx, "event.Admit",
		traces.SessionID(in.SessionID),
		traces.EventType(in.Type),
	)
	defer span.End()

	// Serialize admissions per session: the recompute must see every
	// previously admitted event, and snapshots must append in admission
	// order.
	unlock, err := s.locks.LockContext(ctx, in.SessionID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	sess, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		metrics.EventsRejectedTotal.WithLabelValues("not_found").Inc()
		return nil, nil, err
	}
	if !sess.CanAdmitEvents() {
		metrics.EventsRejectedTotal.WithLabelValues("invalid_state").Inc()
		return nil, nil, fmt.Errorf("%w: session is %s", ErrSessionNotActive, sess.Status)
	}

	prev, err := s.snapshots.Latest(ctx, in.SessionID)
	if err != nil {
		return nil, nil, err
	}
	prevLevel := risk.LevelNormal
	if prev != nil {
		prevLevel = prev.Level
	}

	now := time.Now().UTC()
	e := &Event{
		ID:         idgen.WithPrefix("evt_"),
		SessionID:  in.SessionID,
		Type:       integrity.EventType(in.Type),
		Severity:   integrity.Severity(in.Severity),
		Confidence: in.Confidence,
		Timestamp:  in.Timestamp.UTC(),
		CreatedAt:  now,
	}

	history, err := s.store.ListBySession(ctx, in.SessionID)
	if err != nil {
		return nil, nil, err
	}
	records := make([]risk.EventRecord, 0, len(history)+1)
	for _, h := range history {
		records = append(records, risk.EventRecord{Type: h.Type, Timestamp: h.Timestamp})
	}
	records = append(records, risk.EventRecord{Type: e.Type, Timestamp: e.Timestamp})

	start := time.Now()
	result := s.engine.Compute(in.SessionID, records)
	metrics.RiskRecomputeDuration.Observe(time.Since(start).Seconds())

	snap := &risk.Snapshot{
		ID:        idgen.WithPrefix("risk_"),
		SessionID: in.SessionID,
		Score:     result.Score,
		Level:     result.Level,
		CreatedAt: now,
	}
	if err := s.store.AppendWithSnapshot(ctx, e, snap); err != nil {
		return nil, nil, err
	}

	metrics.EventsAdmittedTotal.WithLabelValues(string(e.Type)).Inc()
	metrics.SnapshotsWrittenTotal.Inc()
	span.SetAttributes(traces.RiskScore(result.Score), traces.RiskLevel(string(result.Level)))

	logging.L(ctx).Info("event admitted",
		"session_id", e.SessionID,
		"event_id", e.ID,
		"event_type", e.Type,
		"risk_score", result.Score,
		"risk_level", result.Level,
	)

	if s.emitter != nil {
		s.emitter.EventAdmitted(e, result)
	}
	if result.Level != prevLevel {
		metrics.RiskLevelTransitionsTotal.WithLabelValues(string(result.Level)).Inc()
		logging.L(ctx).Warn("risk level changed",
			"session_id", e.SessionID,
			"from", prevLevel,
			"to", result.Level,
			"risk_score", result.Score,
		)
		if s.emitter != nil {
			s.emitter.RiskLevelChanged(e.SessionID, result)
		}
	}

	return e, result, nil
}

// ListBySession returns a session's full event history. The session must
// exist; any lifecycle state is queryable.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]*Event, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListBySession(ctx, sessionID)
}

// ListPage returns one page of a session's event history in chronological
// order, plus the next cursor and a has_more flag.
func (s *Service) ListPage(ctx context.Context, sessionID string, cur *pagination.Cursor, limit int) ([]*Event, string, bool, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, "", false, err
	}
	items, err := s.store.ListPage(ctx, sessionID, cur, limit)
	if err != nil {
		return nil, "", false, err
	}
	page, next, more := pagination.ComputePage(items, limit, func(e *Event) (time.Time, string) {
		return e.CreatedAt, e.ID
	})
	return page, next, more, nil
}

func validateInput(in AdmitInput) error {
	if in.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidPayload)
	}
	if in.Type == "" {
		return fmt.Errorf("%w: event_type is required", ErrInvalidPayload)
	}
	if !integrity.ValidEventType(integrity.EventType(in.Type)) {
		return fmt.Errorf("%w: unknown event_type %q", ErrInvalidPayload, in.Type)
	}
	if in.Severity != "" && !integrity.ValidSeverity(integrity.Severity(in.Severity)) {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidPayload, in.Severity)
	}
	if in.Confidence != nil && !integrity.ValidConfidence(*in.Confidence) {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidPayload)
	}
	if in.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidPayload)
	}
	return nil
}
