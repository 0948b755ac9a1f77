package replay

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is the number of writes between inline sweeps of expired keys.
const sweepEvery = 1024

// MemoryStore implements Store in process memory.
// Expired keys are treated as absent on access, swept inline every sweepEvery
// writes and, optionally, by a janitor goroutine.
type MemoryStore struct {
	mu     sync.Mutex
	keys   map[string]time.Time
	writes int
	now    func() time.Time
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryStore creates a store. A positive cleanupInterval starts a janitor
// goroutine that must be stopped with Close.
func NewMemoryStore(cleanupInterval time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		keys: make(map[string]time.Time),
		now:  time.Now,
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if cleanupInterval > 0 {
		m.ticker = time.NewTicker(cleanupInterval)
		go m.cleanupLoop()
	}
	return m
}

// Exists implements Store.
func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.keys[key]
	if !ok {
		return false, nil
	}
	if !m.now().Before(expiresAt) {
		delete(m.keys, key)
		return false, nil
	}
	return true, nil
}

// SetIfAbsent implements Store.
func (m *MemoryStore) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expiresAt, ok := m.keys[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	m.keys[key] = now.Add(ttl)

	m.writes++
	if m.writes%sweepEvery == 0 {
		m.deleteExpiredLocked(now)
	}
	return true, nil
}

// Len returns the number of stored keys, including expired ones not yet swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// DeleteExpired removes all expired keys.
func (m *MemoryStore) DeleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteExpiredLocked(m.now())
}

func (m *MemoryStore) deleteExpiredLocked(now time.Time) {
	for key, expiresAt := range m.keys {
		if !now.Before(expiresAt) {
			delete(m.keys, key)
		}
	}
}

// Close stops the janitor. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.DeleteExpired()
		case <-m.done:
			return
		}
	}
}
