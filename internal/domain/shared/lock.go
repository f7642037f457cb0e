package shared

import (
	"context"
	"time"
)

// Lock is a held mutual-exclusion lease.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out named leases. Obtain fails with ErrConcurrencyConflict
// when the key is held elsewhere.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
