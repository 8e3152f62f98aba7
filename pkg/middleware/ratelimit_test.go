package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }

	h := RateLimit(rl, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := do("10.0.0.1:5555"); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status = %d, want 429", code)
	}
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", code)
	}

	frozen = frozen.Add(2 * time.Second)
	if code := do("10.0.0.1:1234"); code != http.StatusOK {
		t.Errorf("after refill: status = %d, want 200", code)
	}
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }

	rl.Allow("10.0.0.1")
	frozen = frozen.Add(30 * time.Second)
	rl.Allow("10.0.0.2")
	if n := len(rl.visitors); n != 2 {
		t.Fatalf("visitors before sweep = %d, want 2", n)
	}

	frozen = frozen.Add(61 * time.Second)
	rl.Allow("10.0.0.3")
	if n := len(rl.visitors); n != 1 {
		t.Errorf("visitors after sweep = %d, want 1", n)
	}
}
