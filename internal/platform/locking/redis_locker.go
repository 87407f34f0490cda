package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	"github.com/bsm/redislock"
)

const keyPrefix = "transit_finance:lock:"

// RedisLocker serialises work on a key across every API instance sharing one Redis.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  time.Duration
}

var _ portsrepo.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker over client. ttl bounds how long a crashed holder can block others.
func NewRedisLocker(client redislock.RedisClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: redislock.New(client), ttl: ttl, retry: 50 * time.Millisecond}
}

// Lock polls until the key is obtained, ctx is done or one ttl has passed.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	maxRetries := int(l.ttl / l.retry)
	lock, err := l.client.Obtain(ctx, keyPrefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.retry), maxRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, apperrors.NewConflictError(fmt.Sprintf("%s is busy, try again", key))
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to obtain lock "+key, err)
	}

	return func() {
		_ = lock.Release(context.WithoutCancel(ctx))
	}, nil
}
