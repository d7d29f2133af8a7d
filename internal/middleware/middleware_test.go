package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cosmicai/RagAPI/pkg/logger_i"
	"golang.org/x/time/rate"
)

func TestWrap_RateLimitsPerIP(t *testing.T) {
	logger_i.Init()

	wrapped := Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		wrapped(rec, req)
		return rec.Code
	}

	//burst allows the first requests through, then the bucket is empty
	for i := 0; i < 5; i++ {
		if code := send("10.1.1.1:4000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := send("10.1.1.1:4000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}

	//a different client IP has its own bucket
	if code := send("10.1.1.2:4000"); code != http.StatusOK {
		t.Fatalf("expected 200 for fresh IP, got %d", code)
	}
}

func TestIPRateLimiter_PerIPBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)

	a := limiter.GetLimiter("198.51.100.7")
	if a != limiter.GetLimiter("198.51.100.7") {
		t.Error("same IP should reuse its limiter")
	}
	if a == limiter.GetLimiter("198.51.100.8") {
		t.Error("different IPs should get separate limiters")
	}

	if !a.Allow() || !a.Allow() {
		t.Error("burst of 2 should be allowed")
	}
	if a.Allow() {
		t.Error("third immediate request should be denied")
	}
}
