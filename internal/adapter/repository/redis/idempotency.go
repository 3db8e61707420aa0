package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker holds a key while the first request is still being served.
const pendingMarker = "processing"

// claimScript returns the stored value for KEYS[1] or, when the key is free,
// stores ARGV[1] with a TTL of ARGV[2] milliseconds and returns nil.
var claimScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	return current
end
local ttl = tonumber(ARGV[2])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return false
`)

// releaseScript deletes KEYS[1] only while it still holds the pending marker,
// so a stored response is never dropped by a late release.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyStore implements usecase.IdempotencyStore using Redis. Keys
// live under the "idempotency:" namespace.
type IdempotencyStore struct {
	client redis.UniversalClient
}

func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func (s *IdempotencyStore) key(k string) string { return "idempotency:" + k }

// CheckAndSet returns the value already stored under key, if any. Otherwise it
// stores response, or the pending marker when response is nil, in a single
// round trip.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := []byte(pendingMarker)
	if response != nil {
		value = response
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.key(key)}, value, ttl.Milliseconds()).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, err
	default:
		return true, []byte(existing), nil
	}
}

// Update stores the final response under key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), response, ttl).Err()
}

// Release frees a key claimed by CheckAndSet so the request can be retried.
// Keys that already hold a response are left alone.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, s.client, []string{s.key(key)}, pendingMarker).Err()
}
