package webhooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/vigilhq/vigil/internal/event"
	"github.com/vigilhq/vigil/internal/idgen"
	"github.com/vigilhq/vigil/internal/risk"
	"github.com/vigilhq/vigil/internal/session"
)

// Emitter wraps a Dispatcher to emit domain notifications from the session
// and event services. All methods are fire-and-forget: errors are logged
// but never returned, so webhooks can never fail an admission.
type Emitter struct {
	d      *Dispatcher
	logger *slog.Logger
}

// NewEmitter creates a new webhook emitter.
func NewEmitter(d *Dispatcher, logger *slog.Logger) *Emitter {
	return &Emitter{d: d, logger: logger}
}

func (e *Emitter) emit(t NotificationType, data map[string]interface{}) {
	if e == nil || e.d == nil {
		return
	}
	n := &Notification{
		ID:        idgen.WithPrefix("ntf_"),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.d.Dispatch(ctx, n); err != nil {
		e.logger.Warn("webhook emit failed", "type", t, "error", err)
	}
}

// SessionStarted emits a session.started notification.
func (e *Emitter) SessionStarted(s *session.Session) {
	e.emit(NotifySessionStarted, map[string]interface{}{
		"session_id": s.ID,
		"started_at": s.StartedAt,
	})
}

// SessionEnded emits a session.ended notification.
func (e *Emitter) SessionEnded(s *session.Session) {
	e.emit(NotifySessionEnded, map[string]interface{}{
		"session_id": s.ID,
		"ended_at":   s.EndedAt,
	})
}

// EventAdmitted emits an event.admitted notification.
func (e *Emitter) EventAdmitted(ev *event.Event, r *risk.Result) {
	e.emit(NotifyEventAdmitted, map[string]interface{}{
		"session_id": ev.SessionID,
		"event_id":   ev.ID,
		"event_type": string(ev.Type),
		"risk_score": r.Score,
		"risk_level": string(r.Level),
	})
}

// RiskLevelChanged emits a risk.level_changed notification.
func (e *Emitter) RiskLevelChanged(sessionID string, r *risk.Result) {
	e.emit(NotifyRiskLevelChanged, map[string]interface{}{
		"session_id": sessionID,
		"risk_score": r.Score,
		"risk_level": string(r.Level),
	})
}
