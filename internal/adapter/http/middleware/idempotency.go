package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
)

// storedResponse is what gets cached per key.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyMiddleware replays the first successful response of a POST
// carrying an Idempotency-Key.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap claims the key before running next. A stored response is replayed,
// a key still being served answers 409, and a non-2xx outcome releases the
// key so the client may retry. A panicking handler also releases the key
// before the panic continues.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyKeyHeader)
		if r.Method != http.MethodPost || header == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.Path + ":" + header
		logger := zerolog.Ctx(r.Context()).With().Str("idempotency_key", header).Logger()

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			logger.Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
			return
		}
		if exists {
			replay(w, cached)
			return
		}

		// The outcome is recorded even if the client went away mid-request.
		storeCtx := context.WithoutCancel(r.Context())
		release := func() {
			if err := m.store.Release(storeCtx, key); err != nil {
				logger.Warn().Err(err).Msg("idempotency release failed")
			}
		}

		var body bytes.Buffer
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&body)

		completed := false
		defer func() {
			if !completed {
				release()
			}
		}()
		next.ServeHTTP(ww, r)
		completed = true

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status < 200 || status >= 300 {
			release()
			return
		}

		data, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: ww.Header().Get("Content-Type"),
			Body:        body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(storeCtx, key, data, m.ttl)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("idempotency store failed")
		}
	})
}

// replay writes a stored response, or 409 while the first request holding the
// key has not finished.
func replay(w http.ResponseWriter, cached []byte) {
	var stored storedResponse
	if len(cached) == 0 || json.Unmarshal(cached, &stored) != nil || stored.Status == 0 {
		writeJSONError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this Idempotency-Key is still being processed")
		return
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "error": message})
}
