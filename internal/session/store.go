package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Store loads and saves session state.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

// Locker guards a session while a payment is in flight.
type Locker interface {
	// Acquire returns false if the lock is already held.
	Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id string) error
}

type memoryEntry struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Idle sessions expire after
// the TTL; every Get or Save extends it.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore creates a new MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns a copy of the stored state.
func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if now.After(entry.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}

	entry.expiresAt = now.Add(m.ttl)
	m.entries[id] = entry
	return entry.state.Clone(), nil
}

// Save stores a copy of state.
func (m *MemoryStore) Save(ctx context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	stored := state.Clone()
	stored.UpdatedAt = now
	state.UpdatedAt = now
	m.entries[state.ID] = memoryEntry{state: stored, expiresAt: now.Add(m.ttl)}
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep(m.now())
	return len(m.entries)
}

func (m *MemoryStore) sweep(now time.Time) {
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
}

// MemoryLocker is an in-process Locker.
type MemoryLocker struct {
	mu    sync.Mutex
	now   func() time.Time
	locks map[string]time.Time
}

// NewMemoryLocker creates a new MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		now:   time.Now,
		locks: make(map[string]time.Time),
	}
}

// Acquire takes the lock for id unless it is held and not yet expired.
func (l *MemoryLocker) Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expires, held := l.locks[id]; held && now.Before(expires) {
		return false, nil
	}
	l.locks[id] = now.Add(ttl)
	return true, nil
}

// Release drops the lock for id.
func (l *MemoryLocker) Release(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, id)
	return nil
}

// Ensure concrete types implement interfaces.
var (
	_ Store  = (*MemoryStore)(nil)
	_ Locker = (*MemoryLocker)(nil)
)
