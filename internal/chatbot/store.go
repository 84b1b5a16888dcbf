package chatbot

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("chatbot: session not found")

// SessionStore keeps live sessions. Acquire serializes work per
// session so two concurrent messages for the same conversation never
// interleave their read-modify-write cycles.
type SessionStore interface {
	Create(s *Session) error
	Get(id string) (*Session, error)
	Update(s *Session) error
	Acquire(id string) func()
}

// MemorySessionStore is the in-process store used by the API server.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *MemorySessionStore) Create(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = snapshotSession(sess)
	return nil
}

func (s *MemorySessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshotSession(sess), nil
}

func (s *MemorySessionStore) Update(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return ErrSessionNotFound
	}
	cp := snapshotSession(sess)
	cp.UpdatedAt = time.Now().UTC()
	s.sessions[sess.ID] = cp
	return nil
}

// Acquire locks the per-session mutex and returns its release func.
// Locks are created on demand and never removed; session counts stay
// small enough for that to be fine.
func (s *MemorySessionStore) Acquire(id string) func() {
	s.lockMu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.lockMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// snapshotSession copies the session so callers cannot mutate stored
// state without going through Update.
func snapshotSession(sess *Session) *Session {
	cp := *sess
	cp.Context = sess.Context.Clone()
	return &cp
}
