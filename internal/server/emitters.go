package server

import (
	"github.com/vigilhq/vigil/internal/event"
	"github.com/vigilhq/vigil/internal/realtime"
	"github.com/vigilhq/vigil/internal/risk"
	"github.com/vigilhq/vigil/internal/session"
	"github.com/vigilhq/vigil/internal/webhooks"
)

// fanoutEmitter publishes domain events to both the WebSocket hub and the
// webhook dispatcher. Implements session.EventEmitter and event.Emitter.
type fanoutEmitter struct {
	rt *realtime.Emitter
	wh *webhooks.Emitter
}

func (f *fanoutEmitter) SessionStarted(s *session.Session) {
	f.rt.SessionStarted(s)
	f.wh.SessionStarted(s)
}

func (f *fanoutEmitter) SessionEnded(s *session.Session) {
	f.rt.SessionEnded(s)
	f.wh.SessionEnded(s)
}

func (f *fanoutEmitter) EventAdmitted(ev *event.Event, r *risk.Result) {
	f.rt.EventAdmitted(ev, r)
	f.wh.EventAdmitted(ev, r)
}

func (f *fanoutEmitter) RiskLevelChanged(sessionID string, r *risk.Result) {
	f.rt.RiskLevelChanged(sessionID, r)
	f.wh.RiskLevelChanged(sessionID, r)
}
