package replay

import (
	"context"
	"time"
)

// Store is a TTL-bounded set of used-code keys.
type Store interface {
	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)
	// SetIfAbsent atomically stores key for ttl and reports whether it was absent.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
