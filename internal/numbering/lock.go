package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when the numbering lock could not be obtained in time.
var ErrLockTimeout = errors.New("numbering lock not obtained")

// Release frees an acquired lock.
type Release func(ctx context.Context) error

// Locker serialises number generation for one kind and year across processes.
type Locker interface {
	Acquire(ctx context.Context, kind models.DocumentKind, year int) (Release, error)
}

// Key is the lock name for kind and year.
func Key(kind models.DocumentKind, year int) string {
	return fmt.Sprintf("numbering:%s:%d", kind, year)
}

// NopLocker is used when no redis is configured. The unique index on the number
// column still rejects duplicates.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, models.DocumentKind, int) (Release, error) {
	return func(context.Context) error { return nil }, nil
}

// RedisLocker holds a redislock mutex for the duration of a document creation.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisLocker returns a locker using rdb. ttl bounds both how long the lock
// is held and how long Acquire waits for it.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, kind models.DocumentKind, year int) (Release, error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	lock, err := l.client.Obtain(waitCtx, Key(kind, year), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s: %w", Key(kind, year), ErrLockTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", Key(kind, year), err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
