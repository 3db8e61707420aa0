package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// newTestRedisClient starts a miniredis server that is shut down, together
// with the client, when the test ends.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }

// existsOnly is a usecase.UserLookup over a fixed set of ids.
type existsOnly map[int64]bool

func (e existsOnly) Exists(_ context.Context, id int64) (bool, error) { return e[id], nil }

func (e existsOnly) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if e[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
