// Package lock provides per-key mutual exclusion for costing writes, backed by
// Redis when several instances share a database and by a process-local table otherwise.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockNotHeld is returned by Release when the lock expired or was taken over
var ErrLockNotHeld = errors.New("lock: not held")

const redisKeyPrefix = "lock:"

type options struct {
	backoff  time.Duration
	attempts int
	logger   *zap.Logger
}

// Option configures a locker
type Option func(*options)

// WithRetry makes Obtain retry every backoff up to attempts times before giving up
func WithRetry(backoff time.Duration, attempts int) Option {
	return func(o *options) {
		o.backoff = backoff
		o.attempts = attempts
	}
}

// WithLockerLogger sets the logger
func WithLockerLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// retryStrategy returns a fresh strategy per Obtain; redislock's limited
// retry counts attempts inside the value.
func (o options) retryStrategy() redislock.RetryStrategy {
	if o.backoff <= 0 || o.attempts <= 0 {
		return redislock.NoRetry()
	}
	return redislock.LimitRetry(redislock.LinearBackoff(o.backoff), o.attempts)
}

// RedisLocker implements shared.Locker with bsm/redislock
type RedisLocker struct {
	client *redislock.Client
	opts   options
}

// NewRedisLocker creates a locker on an existing client.
// The caller retains ownership of the client.
func NewRedisLocker(client redis.UniversalClient, opts ...Option) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		opts:   newOptions(opts),
	}
}

// Obtain acquires the key for ttl
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	lk, err := l.client.Obtain(ctx, redisKeyPrefix+key, ttl, &redislock.Options{RetryStrategy: l.opts.retryStrategy()})
	if err != nil {
		return nil, mapObtainError(key, err)
	}
	l.opts.logger.Debug("Obtained lock", zap.String("key", key), zap.Duration("ttl", ttl))
	return &redisLock{lock: lk, key: key, logger: l.opts.logger}, nil
}

func mapObtainError(key string, err error) error {
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("%w: %s is locked by another writer", shared.ErrConcurrencyConflict, key)
	}
	return fmt.Errorf("failed to obtain lock %s: %w", key, err)
}

type redisLock struct {
	lock   *redislock.Lock
	key    string
	logger *zap.Logger
}

// Release frees the key if this holder still owns it
func (l *redisLock) Release(ctx context.Context) error {
	if err := l.lock.Release(ctx); err != nil {
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("%w: %s", ErrLockNotHeld, l.key)
		}
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	l.logger.Debug("Released lock", zap.String("key", l.key))
	return nil
}

var _ shared.Locker = (*RedisLocker)(nil)
