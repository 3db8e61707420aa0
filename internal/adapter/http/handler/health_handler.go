package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 5 * time.Second

// DBPinger is satisfied by *pgxpool.Pool.
type DBPinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name string
	code string
	ping func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes. Readiness pings every
// configured dependency in parallel.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler creates a new HealthHandler. Either argument may be nil, in
// which case that dependency is not probed.
func NewHealthHandler(pool DBPinger, redisClient *redis.Client) *HealthHandler {
	h := &HealthHandler{}
	if pool != nil {
		h.deps = append(h.deps, dependency{name: "postgres", code: "POSTGRES_UNAVAILABLE", ping: pool.Ping})
	}
	if redisClient != nil {
		h.deps = append(h.deps, dependency{
			name: "redis",
			code: "REDIS_UNAVAILABLE",
			ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return h
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness answers 503 with the first failing dependency's code, in the
// order postgres then redis.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	errs := make([]error, len(h.deps))
	var wg sync.WaitGroup
	for i, dep := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = dep.ping(ctx)
		}()
	}
	wg.Wait()

	status := map[string]string{"status": "ready"}
	for i, dep := range h.deps {
		if errs[i] != nil {
			writeError(w, http.StatusServiceUnavailable, dep.code, errs[i].Error())
			return
		}
		status[dep.name] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
