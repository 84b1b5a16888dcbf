package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("client-a") {
		t.Fatalf("request beyond burst should be rejected")
	}
	// A different client has its own bucket.
	if !rl.Allow("client-b") {
		t.Fatalf("other client should be allowed")
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("idle-client")
	rl.clients["idle-client"].lastSeen = time.Now().Add(-staleAfter - time.Minute)
	rl.lastSweep = time.Now().Add(-2 * time.Minute)

	rl.Allow("fresh-client")

	if _, ok := rl.clients["idle-client"]; ok {
		t.Fatalf("idle client bucket should have been swept")
	}
	if _, ok := rl.clients["fresh-client"]; !ok {
		t.Fatalf("fresh client bucket should remain")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RateLimit(0.001, 1)
	wrapped := mw(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/chatbot/message", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.1")

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
}
