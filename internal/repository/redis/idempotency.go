package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemNS = ns + ":idem"

	idemLock      = "LOCK"
	idemResPrefix = "RES:"
)

// releaseLua drops the key only while it still holds the in-flight marker,
// so a stored result is never discarded by a late Release.
const releaseLua = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

func KeyIdemTicket(eventCode int64, idemKey string) string {
	return fmt.Sprintf("%s:tickets:%d:%s", idemNS, eventCode, idemKey)
}

// IdempotencyStore remembers the response of a ticket issue keyed by the
// client's Idempotency-Key. A key holds either the lock marker while the
// first request is in flight or "RES:<json>" once it completed.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// AcquireLock marks key as in flight. It reports false when another
// request already holds the key or finished with it.
func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	const op = "redis.IdempotencyStore.AcquireLock"

	ok, err := s.rdb.SetNX(ctx, key, idemLock, lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// SaveResult replaces the lock with the final response for the store's TTL.
func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
	return s.rdb.Set(ctx, key, idemResPrefix+jsonPayload, s.ttl).Err()
}

// GetResult returns the stored response, if the request behind key
// has completed.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, bool, error) {
	const op = "redis.IdempotencyStore.GetResult"

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	payload, ok := strings.CutPrefix(v, idemResPrefix)
	if !ok {
		return "", false, nil
	}
	return payload, true, nil
}

// Release frees a lock taken by a request that failed.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Eval(ctx, releaseLua, []string{key}, idemLock).Err()
}
