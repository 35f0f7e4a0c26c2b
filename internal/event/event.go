// Package event implements the admission pipeline for integrity events:
// validation, lifecycle gating, persistence, and risk recomputation.
package event

import (
	"errors"
	"time"

	"github.com/vigilhq/vigil/internal/integrity"
)

var (
	// ErrInvalidPayload indicates a malformed or out-of-catalog event
	// submission.
	ErrInvalidPayload = errors.New("event: invalid payload")

	// ErrSessionNotActive indicates the target session exists but is not
	// in a state that accepts events.
	ErrSessionNotActive = errors.New("event: session is not accepting events")
)

// Event is one admitted integrity signal. Severity and Confidence are
// recorded as reported by the monitor; scoring depends only on Type and
// Timestamp.
type Event struct {
	ID         string              `json:"id"`
	SessionID  string              `json:"session_id"`
	Type       integrity.EventType `json:"event_type"`
	Severity   integrity.Severity  `json:"severity"`
	Confidence *float64            `json:"confidence,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
	CreatedAt  time.Time           `json:"created_at"`
}
