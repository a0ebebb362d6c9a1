package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired entries are
// dropped when they are read or when new sessions are created.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Data
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Data),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, sessionID string, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, d := range s.sessions {
		if d.Expired(now) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sessionID] = *data
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Expired(s.now()) {
		delete(s.sessions, sessionID)
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
