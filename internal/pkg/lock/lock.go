// Package lock serializes stock writes per product key.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
)

// ErrNotObtained is returned when a lock could not be acquired in time
var ErrNotObtained = errors.New("lock not obtained")

// Unlock releases a held lock. Calling it more than once is safe.
type Unlock func()

// Locker hands out mutually exclusive locks by key
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// StockKey is the lock key guarding a product's ledger
func StockKey(sku string) string {
	return "stock:" + sku
}

// New picks the backend configured in LOCK_BACKEND
func New(cfg *config.Config, rdb *redis.Client, logger logrus.FieldLogger) Locker {
	if cfg.Lock.Backend == config.LockBackendRedis && rdb != nil {
		return NewRedisLocker(rdb, cfg.Lock.TTL, cfg.Lock.WaitBudget, cfg.Lock.RetryEvery, logger)
	}
	return NewLocalLocker()
}

// LocalLocker is an in-process keyed mutex. Waiters on different keys
// never block each other, and idle keys are dropped from the map.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker creates an empty keyed mutex
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Lock blocks until key is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.release(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, ctx.Err())
	}
}

// Len reports how many keys are currently held or awaited
func (l *LocalLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *LocalLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// RedisLocker holds locks in Redis so that several API instances
// serialize on the same product.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger logrus.FieldLogger
}

// NewRedisLocker wraps a go-redis client with redislock
func NewRedisLocker(rdb *redis.Client, ttl, wait, retry time.Duration, logger logrus.FieldLogger) *RedisLocker {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		retry:  retry,
		logger: logger,
	}
}

// Lock tries to obtain key, retrying linearly until the wait budget is spent
func (r *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	attempts := int(r.wait / r.retry)
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(r.retry), attempts),
	}

	lk, err := r.client.Obtain(ctx, "lock:"+key, r.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain redis lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.logger.WithError(err).WithField("key", key).Warn("failed to release redis lock")
			}
		})
	}, nil
}
