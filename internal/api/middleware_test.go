package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientLimiterAllow(t *testing.T) {
	limiter := NewClientLimiter(1, 2)

	// Burst of two passes, the third is rejected.
	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("burst requests rejected")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("request over burst allowed")
	}

	// Buckets are per client.
	if !limiter.Allow("10.0.0.2") {
		t.Error("fresh client rejected")
	}
}

func TestClientLimiterMiddleware(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:4000"); code != http.StatusNoContent {
		t.Fatalf("first request status = %d", code)
	}
	if code := send("10.0.0.1:4001"); code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", code)
	}
	// A different host gets its own bucket.
	if code := send("10.0.0.2:4000"); code != http.StatusNoContent {
		t.Errorf("other client status = %d", code)
	}
}
