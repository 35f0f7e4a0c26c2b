// Package risk implements cumulative integrity-risk scoring for monitored
// interview sessions.
//
// Every admitted event is scored against a static rule table: each event
// type contributes a fixed score up to a per-session cap of countable hits.
// The running total maps onto a coarse level (NORMAL / SUSPICIOUS /
// HIGH_RISK) via inclusive thresholds. Scoring is a pure function of the
// session's event history, so the score is always reproducible from the
// event log alone.
package risk

import (
	"context"
	"time"

	"github.com/vigilhq/vigil/internal/integrity"
)

// Level is the coarse risk category derived from the score.
type Level string

const (
	LevelNormal     Level = "NORMAL"
	LevelSuspicious Level = "SUSPICIOUS"
	LevelHighRisk   Level = "HIGH_RISK"
)

// Reason records a single scoring hit: an event that contributed score
// before its type's cap was reached.
type Reason struct {
	EventType  integrity.EventType `json:"event_type"`
	Timestamp  time.Time           `json:"timestamp"`
	ScoreAdded int                 `json:"score_added"`
}

// EventCounts holds raw occurrence totals for the event types surfaced in
// reports. Raw counts keep growing after a type's scoring cap is reached.
type EventCounts struct {
	TabSwitch   int `json:"tab_switch_count"`
	WindowBlur  int `json:"window_blur_count"`
	FaceMissing int `json:"face_missing_count"`
}

// Result is the engine's full output for one session.
type Result struct {
	SessionID   string      `json:"session_id"`
	Score       int         `json:"risk_score"`
	Level       Level       `json:"risk_level"`
	EventCounts EventCounts `json:"event_counts"`
	Reasons     []Reason    `json:"reasons"`
}

// EventRecord is the engine's view of one admitted event. The engine reads
// only the type and the occurrence timestamp; severity and confidence are
// informational and never scored.
type EventRecord struct {
	Type      integrity.EventType
	Timestamp time.Time
}

// Snapshot is one entry in a session's append-only score history. A new
// snapshot is written every time an event is admitted; the session's
// current score is the most recent snapshot.
type Snapshot struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Score     int       `json:"risk_score"`
	Level     Level     `json:"risk_level"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotStore persists the score history.
type SnapshotStore interface {
	Append(ctx context.Context, snap *Snapshot) error
	Latest(ctx context.Context, sessionID string) (*Snapshot, error)
}
