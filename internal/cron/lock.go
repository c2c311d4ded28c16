package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 25 * time.Hour

// Lock coordinates exclusive worker runs across instances.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// lockStore defines the redis operations RedisLock needs.
type lockStore interface {
	AcquireLock(ctx context.Context, key, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, holder string) error
}

// RedisLock implements Lock with SETNX + TTL. The TTL guards against a
// crashed holder keeping the lock forever.
type RedisLock struct {
	store  lockStore
	key    string
	ttl    time.Duration
	holder string
}

// NewRedisLock constructs a redis-backed lock.
func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis store required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	holder := uuid.NewString()
	ok, err := l.store.AcquireLock(ctx, l.key, holder, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if ok {
		l.holder = holder
	}
	return ok, nil
}

// Release frees the lock only while this instance still holds it. A lock
// whose TTL expired and was taken over by another worker is left alone.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.holder == "" {
		return nil
	}
	if err := l.store.ReleaseLock(ctx, l.key, l.holder); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	l.holder = ""
	return nil
}
