package twofactor

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. Records are cloned on the way in
// and out, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[Owner]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Owner]*Record)}
}

func (m *MemoryStore) Load(_ context.Context, owner Owner) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[owner]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, record *Record) error {
	if err := record.Owner.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.save(record)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, owner Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, owner)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, owner Owner, fn func(*Record) error) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.records[owner]
	if !ok {
		return nil, ErrRecordNotFound
	}
	rec := stored.Clone()
	if err := fn(rec); err != nil {
		return nil, err
	}
	m.save(rec)
	return rec.Clone(), nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MemoryStore) save(record *Record) {
	rec := record.Clone()
	if prev, ok := m.records[rec.Owner]; ok {
		rec.ID = prev.ID
		rec.CreatedAt = prev.CreatedAt
		rec.Version = prev.Version
	}
	rec.Version++
	record.ID = rec.ID
	record.Version = rec.Version
	m.records[rec.Owner] = rec
}
