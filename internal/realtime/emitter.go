package realtime

import (
	"github.com/vigilhq/vigil/internal/event"
	"github.com/vigilhq/vigil/internal/risk"
	"github.com/vigilhq/vigil/internal/session"
)

// Emitter adapts the hub to the emitter interfaces the session and event
// services publish through. Broadcasts never block admission.
type Emitter struct {
	hub *Hub
}

// NewEmitter wraps a hub for use as a service emitter.
func NewEmitter(hub *Hub) *Emitter {
	return &Emitter{hub: hub}
}

func (e *Emitter) SessionStarted(s *session.Session) {
	e.hub.Publish(MessageSessionStarted, map[string]interface{}{
		"session_id": s.ID,
		"status":     string(s.Status),
	})
}

func (e *Emitter) SessionEnded(s *session.Session) {
	e.hub.Publish(MessageSessionEnded, map[string]interface{}{
		"session_id": s.ID,
		"status":     string(s.Status),
	})
}

func (e *Emitter) EventAdmitted(ev *event.Event, r *risk.Result) {
	e.hub.Publish(MessageEventAdmitted, map[string]interface{}{
		"session_id": ev.SessionID,
		"event_id":   ev.ID,
		"event_type": string(ev.Type),
		"risk_score": r.Score,
		"risk_level": string(r.Level),
	})
}

func (e *Emitter) RiskLevelChanged(sessionID string, r *risk.Result) {
	e.hub.Publish(MessageRiskLevelChanged, map[string]interface{}{
		"session_id": sessionID,
		"risk_score": r.Score,
		"risk_level": string(r.Level),
	})
}
