package twofactor

import "context"

// Store persists records, one per owner.
//
// Update is the per-owner critical section: it loads the record (ErrRecordNotFound
// when there is none), runs fn on it and saves the result. If fn returns an error
// nothing is written and that error is returned unchanged. Implementations must
// serialize concurrent Update calls for the same owner. Optimistic implementations
// may run fn more than once, so fn should only change the record it is given.
type Store interface {
	Load(ctx context.Context, owner Owner) (*Record, error)
	Save(ctx context.Context, record *Record) error
	Delete(ctx context.Context, owner Owner) error
	Update(ctx context.Context, owner Owner, fn func(*Record) error) (*Record, error)
}
