// Package lock provides the batch-run mutual exclusion used by billing.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker obtains leases through redislock so only one process runs a batch at a time.
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker wraps an existing redis client.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

// ConnectRedis pings addr and returns a locker, failing fast instead of retrying.
func ConnectRedis(ctx context.Context, addr string) (*RedisLocker, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect redis at %s: %w", addr, err)
	}
	slog.Info("connected to redis", slog.String("addr", addr))
	return NewRedisLocker(rdb), rdb, nil
}

var _ portssvc.BatchLocker = (*RedisLocker)(nil)

// Obtain takes the lease without retrying. A held key is reported as ErrConflict.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (portssvc.Lock, error) {
	lk, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s is already running", apperrors.ErrConflict, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return redisLease{lk}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (r redisLease) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// the lease expired before the run finished
		return nil
	}
	return err
}

// LocalLocker is an in-process locker for single-instance and test deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), now: time.Now}
}

var _ portssvc.BatchLocker = (*LocalLocker)(nil)

// Obtain takes key until released or until ttl passes.
func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (portssvc.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, fmt.Errorf("%w: %s is already running", apperrors.ErrConflict, key)
	}
	until := now.Add(ttl)
	l.held[key] = until
	return &localLease{locker: l, key: key, until: until}, nil
}

type localLease struct {
	locker *LocalLocker
	key    string
	until  time.Time
}

func (r *localLease) Release(context.Context) error {
	r.locker.mu.Lock()
	defer r.locker.mu.Unlock()
	// a newer holder may have taken an expired lease
	if r.locker.held[r.key].Equal(r.until) {
		delete(r.locker.held, r.key)
	}
	return nil
}
