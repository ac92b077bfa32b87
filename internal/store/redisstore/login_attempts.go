// Package redisstore keeps login-attempt counters in Redis for deployments
// that already run one; keys expire on their own after domain.LoginAttemptTTL.
package redisstore

import (
	"context"
	"strconv"
	"time"

	"authsvc/internal/domain"
	"authsvc/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const (
	fieldAttempts  = "attempts"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

type LoginAttemptStore struct {
	redis  *redis.Client
	prefix string
}

func NewLoginAttemptStore(client *redis.Client, prefix string) *LoginAttemptStore {
	if prefix == "" {
		prefix = "auth"
	}
	return &LoginAttemptStore{redis: client, prefix: prefix}
}

func (l *LoginAttemptStore) key(email string) string {
	return l.prefix + ":login_attempts:" + email
}

func (l *LoginAttemptStore) Get(ctx context.Context, email string) (*domain.LoginAttempt, error) {
	vals, err := l.redis.HGetAll(ctx, l.key(email)).Result()
	if err != nil {
		return nil, oops.Code("AUTH_REDIS_FAILED").With("operation", "read login attempts").Wrap(err)
	}
	if len(vals) == 0 {
		return nil, store.ErrRecordNotFound
	}
	attempts, err := strconv.Atoi(vals[fieldAttempts])
	if err != nil {
		return nil, oops.Code("AUTH_REDIS_CORRUPT").With("key", l.key(email)).Wrap(err)
	}
	return &domain.LoginAttempt{
		Email:     email,
		Attempts:  attempts,
		CreatedAt: parseMillis(vals[fieldCreatedAt]),
		UpdatedAt: parseMillis(vals[fieldUpdatedAt]),
	}, nil
}

// Increment bumps the counter and refreshes its expiry in one MULTI block.
func (l *LoginAttemptStore) Increment(ctx context.Context, email string, now time.Time) error {
	key := l.key(email)
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldAttempts, 1)
		pipe.HSetNX(ctx, key, fieldCreatedAt, stamp)
		pipe.HSet(ctx, key, fieldUpdatedAt, stamp)
		pipe.Expire(ctx, key, domain.LoginAttemptTTL)
		return nil
	})
	if err != nil {
		return oops.Code("AUTH_REDIS_FAILED").With("operation", "increment login attempts").Wrap(err)
	}
	return nil
}

func (l *LoginAttemptStore) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return oops.Code("AUTH_REDIS_FAILED").With("operation", "reset login attempts").Wrap(err)
	}
	return nil
}

func parseMillis(v string) time.Time {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
