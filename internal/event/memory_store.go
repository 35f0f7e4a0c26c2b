package event

import (
	"context"
	"sync"

	"github.com/vigilhq/vigil/internal/pagination"
	"github.com/vigilhq/vigil/internal/risk"
)

// MemoryStore is an in-memory Store for demo/test use. The paired snapshot
// is delegated to a MemorySnapshotStore under the same lock, preserving the
// event/snapshot pairing guarantee.
type MemoryStore struct {
	mu        sync.RWMutex
	events    map[string][]*Event // sessionID → events in admission order
	snapshots *risk.MemorySnapshotStore
}

// NewMemoryStore creates an in-memory event store that writes snapshots to
// the given history store.
func NewMemoryStore(snapshots *risk.MemorySnapshotStore) *MemoryStore {
	return &MemoryStore{
		events:    make(map[string][]*Event),
		snapshots: snapshots,
	}
}

func (s *MemoryStore) AppendWithSnapshot(ctx context.Context, e *Event, snap *risk.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.events[e.SessionID] = append(s.events[e.SessionID], &cp)
	return s.snapshots.Append(ctx, snap)
}

func (s *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.events[sessionID]
	out := make([]*Event, len(history))
	for i, e := range history {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

func (s *MemoryStore) ListPage(_ context.Context, sessionID string, cur *pagination.Cursor, limit int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.events[sessionID] {
		if cur != nil {
			if e.CreatedAt.Before(cur.CreatedAt) {
				continue
			}
			if e.CreatedAt.Equal(cur.CreatedAt) && e.ID <= cur.ID {
				continue
			}
		}
		cp := *e
		out = append(out, &cp)
		if len(out) == limit+1 {
			break
		}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
