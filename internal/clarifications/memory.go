package clarifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Ledger. Sessions do not survive a restart and are
// not shared between instances.
type Memory struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]Session
}

// MemoryOption configures a Memory ledger.
type MemoryOption func(*Memory)

// WithClock replaces the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[uuid.UUID]Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Open(_ context.Context, fingerprint string, questions []string, catalogVersion string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	s := newSession(fingerprint, questions, catalogVersion, now, m.ttl)
	m.sessions[s.ID] = s
	return s, nil
}

func (m *Memory) Find(_ context.Context, id uuid.UUID) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(id)
}

func (m *Memory) Take(_ context.Context, id uuid.UUID) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	delete(m.sessions, id)
	return s, nil
}

// Len reports the number of stored sessions, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Memory) lookup(id uuid.UUID) (Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (m *Memory) sweep(now time.Time) {
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}
