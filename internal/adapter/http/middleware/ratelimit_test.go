package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(rps float64, burst int) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rps, burst)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func serveFrom(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = addr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl, now := newTestLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	if rr := serveFrom(handler, "1.2.3.4:1000"); rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}

	rr := serveFrom(handler, "1.2.3.4:2000")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected same host on another port to be throttled, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}

	if rr := serveFrom(handler, "5.6.7.8:1000"); rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}

	*now = now.Add(time.Second)
	if rr := serveFrom(handler, "1.2.3.4:1000"); rr.Code != http.StatusOK {
		t.Fatalf("expected refill after a second, got %d", rr.Code)
	}
}

func TestRateLimiter_RejectedRequestDoesNotConsumeTokens(t *testing.T) {
	rl, now := newTestLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serveFrom(handler, "1.2.3.4:1")
	for range 5 {
		serveFrom(handler, "1.2.3.4:1")
	}

	*now = now.Add(time.Second)
	if rr := serveFrom(handler, "1.2.3.4:1"); rr.Code != http.StatusOK {
		t.Fatalf("rejected requests must not push the refill back, got %d", rr.Code)
	}
}

func TestRateLimiter_Evict(t *testing.T) {
	rl, now := newTestLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serveFrom(handler, "1.1.1.1:1")
	*now = now.Add(30 * time.Second)
	serveFrom(handler, "2.2.2.2:1")
	*now = now.Add(40 * time.Second)

	if removed := rl.Evict(time.Minute); removed != 1 {
		t.Fatalf("expected one idle client evicted, got %d", removed)
	}
	if _, ok := rl.clients["2.2.2.2"]; !ok {
		t.Fatal("recently seen client must be kept")
	}
	if _, ok := rl.clients["1.1.1.1"]; ok {
		t.Fatal("idle client must be evicted")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected host only, got %s", got)
	}

	req.RemoteAddr = "10.0.0.2"
	if got := clientIP(req); got != "10.0.0.2" {
		t.Fatalf("expected raw addr fallback, got %s", got)
	}
}
