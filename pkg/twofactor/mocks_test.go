package twofactor_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// MockStore is a mock implementation of twofactor.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, owner twofactor.Owner) (*twofactor.Record, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.Record), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, record *twofactor.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, owner twofactor.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockStore) Update(ctx context.Context, owner twofactor.Owner, fn func(*twofactor.Record) error) (*twofactor.Record, error) {
	args := m.Called(ctx, owner, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactor.Record), args.Error(1)
}

// MockNotifier is a mock implementation of twofactor.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event twofactor.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockReplayStore is a mock implementation of replay.Store.
type MockReplayStore struct {
	mock.Mock
}

func (m *MockReplayStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockReplayStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

// recorder collects emitted events.
type recorder struct {
	mu     sync.Mutex
	events []twofactor.Event
}

func (r *recorder) Notify(_ context.Context, event twofactor.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Kinds() []twofactor.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]twofactor.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (r *recorder) Count(kind twofactor.EventKind) int {
	n := 0
	for _, k := range r.Kinds() {
		if k == kind {
			n++
		}
	}
	return n
}
