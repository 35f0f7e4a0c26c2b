package event

import (
	"context"

	"github.com/vigilhq/vigil/internal/pagination"
	"github.com/vigilhq/vigil/internal/risk"
)

// Store persists admitted events. AppendWithSnapshot writes the event and
// its paired risk snapshot together: either both land or neither does, so
// the score history never drifts from the event log.
type Store interface {
	AppendWithSnapshot(ctx context.Context, e *Event, snap *risk.Snapshot) error

	// ListBySession returns a session's full event history in
	// chronological admission order.
	ListBySession(ctx context.Context, sessionID string) ([]*Event, error)

	// ListPage returns up to limit+1 events after the cursor position,
	// ordered by (created_at, id) ascending. A nil cursor starts from the
	// beginning.
	ListPage(ctx context.Context, sessionID string, cur *pagination.Cursor, limit int) ([]*Event, error)
}
