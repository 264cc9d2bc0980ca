package session

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	state State
	saved time.Time
}

// MemoryStore keeps session state in process. Like RedisStore, entries
// expire ttl after their last save.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (State, error) {
	if strings.TrimSpace(id) == "" {
		return State{}, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return New(id), nil
	}
	if m.expired(entry, m.now()) {
		delete(m.entries, id)
		return New(id), nil
	}
	return entry.state, nil
}

func (m *MemoryStore) Save(_ context.Context, state State) error {
	if strings.TrimSpace(state.ID) == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.entries[state.ID] = memoryEntry{state: state, saved: now}
	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweep(now)
	}
	return nil
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return now.Sub(entry.saved) >= m.ttl
}

// sweep drops every expired entry. Callers hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	for id, entry := range m.entries {
		if m.expired(entry, now) {
			delete(m.entries, id)
		}
	}
	m.lastSweep = now
}
