package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"go.uber.org/zap"
)

// MutexLocker implements shared.Locker inside one process.
// Held keys expire after their ttl like their Redis counterparts.
type MutexLocker struct {
	mu    sync.Mutex
	held  map[string]heldKey
	next  uint64
	clock func() time.Time
	opts  options
}

type heldKey struct {
	token     uint64
	expiresAt time.Time
}

// NewMutexLocker creates an empty in-process locker. Without WithRetry a held
// key fails Obtain immediately.
func NewMutexLocker(opts ...Option) *MutexLocker {
	return &MutexLocker{
		held:  make(map[string]heldKey),
		clock: time.Now,
		opts:  newOptions(opts),
	}
}

// Obtain acquires the key for ttl, retrying on the configured backoff while
// it is held and unexpired
func (l *MutexLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	retry := l.opts.retryStrategy()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if lk, ok := l.tryObtain(key, ttl); ok {
			l.opts.logger.Debug("Obtained lock", zap.String("key", key), zap.Duration("ttl", ttl))
			return lk, nil
		}

		backoff := retry.NextBackoff()
		if backoff <= 0 {
			return nil, fmt.Errorf("%w: %s is locked by another writer", shared.ErrConcurrencyConflict, key)
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *MutexLocker) tryObtain(key string, ttl time.Duration) (*mutexLock, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return nil, false
	}

	l.next++
	l.held[key] = heldKey{token: l.next, expiresAt: now.Add(ttl)}
	return &mutexLock{locker: l, key: key, token: l.next}, true
}

// Held reports whether the key is currently held
func (l *MutexLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.held[key]
	return ok && l.clock().Before(h.expiresAt)
}

type mutexLock struct {
	locker *MutexLocker
	key    string
	token  uint64
}

func (m *mutexLock) Release(_ context.Context) error {
	l := m.locker
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.held[m.key]
	if !ok || h.token != m.token || !l.clock().Before(h.expiresAt) {
		return fmt.Errorf("%w: %s", ErrLockNotHeld, m.key)
	}
	delete(l.held, m.key)
	return nil
}

var _ shared.Locker = (*MutexLocker)(nil)
