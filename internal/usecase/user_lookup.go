package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const userExistsKeyPrefix = "user:exists:"

// CachedUserLookup serves existence checks from a cache before falling back
// to the wrapped lookup. Only positive answers are cached since users are
// never deleted.
type CachedUserLookup struct {
	next   UserLookup
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedUserLookup creates a new CachedUserLookup.
func NewCachedUserLookup(next UserLookup, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedUserLookup {
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	return &CachedUserLookup{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Exists reports whether the user id is registered.
func (c *CachedUserLookup) Exists(ctx context.Context, id int64) (bool, error) {
	if c.cached(ctx, id) {
		return true, nil
	}

	exists, err := c.next.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		c.remember(ctx, id)
	}

	return exists, nil
}

// ExistingIDs returns the registered subset of ids, querying the wrapped
// lookup only for ids missing from the cache.
func (c *CachedUserLookup) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found := make([]int64, 0, len(ids))
	var misses []int64
	for _, id := range ids {
		if c.cached(ctx, id) {
			found = append(found, id)
		} else {
			misses = append(misses, id)
		}
	}

	if len(misses) == 0 {
		return found, nil
	}

	existing, err := c.next.ExistingIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, id := range existing {
		c.remember(ctx, id)
	}

	return append(found, existing...), nil
}

func (c *CachedUserLookup) cached(ctx context.Context, id int64) bool {
	_, err := c.cache.Get(ctx, userKey(id))
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn().Err(err).Int64("user_id", id).Msg("user cache read failed")
	}
	return false
}

func (c *CachedUserLookup) remember(ctx context.Context, id int64) {
	if err := c.cache.Set(ctx, userKey(id), "1", c.ttl); err != nil {
		c.logger.Warn().Err(err).Int64("user_id", id).Msg("user cache write failed")
	}
}

func userKey(id int64) string {
	return userExistsKeyPrefix + strconv.FormatInt(id, 10)
}
