package risk

import (
	"context"
	"sync"
)

// MemorySnapshotStore is an in-memory SnapshotStore for demo/test use.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string][]*Snapshot // sessionID → snapshots in append order
}

// NewMemorySnapshotStore creates an in-memory score history store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snapshots: make(map[string][]*Snapshot),
	}
}

func (s *MemorySnapshotStore) Append(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *snap
	s.snapshots[snap.SessionID] = append(s.snapshots[snap.SessionID], &cp)
	return nil
}

// Latest returns the most recent snapshot for a session, or nil if the
// session has no score history yet.
func (s *MemorySnapshotStore) Latest(_ context.Context, sessionID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.snapshots[sessionID]
	if len(history) == 0 {
		return nil, nil
	}
	cp := *history[len(history)-1]
	return &cp, nil
}

var _ SnapshotStore = (*MemorySnapshotStore)(nil)
