// Package session manages the lifecycle of monitored interview sessions.
//
// A session moves through exactly one path: CREATED → ACTIVE → ENDED.
// Events may only be recorded while the session is ACTIVE, and once ENDED
// a session never transitions again.
package session

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotFound          = errors.New("session: not found")
	ErrInvalidTransition = errors.New("session: invalid lifecycle transition")
)

// Status represents a session's lifecycle state.
type Status string

const (
	StatusCreated Status = "CREATED"
	StatusActive  Status = "ACTIVE"
	StatusEnded   Status = "ENDED"
)

// Session represents one monitored interview instance. Sessions are
// identified independently of any user account.
type Session struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// CanAdmitEvents reports whether the session accepts event admission.
func (s *Session) CanAdmitEvents() bool {
	return s.Status == StatusActive
}
