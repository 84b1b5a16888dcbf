package transcript

import (
	"context"
	"sync"
)

// MemoryStore keeps transcripts in process memory. Used in development and
// as the fallback when no Redis address is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryStore creates an empty in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry)}
}

// Append records a turn, assigning the next message number for the
// session.
func (s *MemoryStore) Append(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.MessageNumber = len(s.entries[entry.SessionID]) + 1
	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], entry)
	return nil
}

// List returns up to limit turns for a session in append order.
func (s *MemoryStore) List(ctx context.Context, sessionID string, limit int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[sessionID]
	if limit > 0 && int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}
