package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notesaas/notehub/internal/http/middlewares"
)

func limitedRouter(rl *middlewares.RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(3, time.Minute, nil)
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on 429 response")
	}
}

func TestRateLimiterIsolatesKeys(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute, nil)
	r := limitedRouter(rl)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	r.ServeHTTP(first, req)

	blocked := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:2000"
	r.ServeHTTP(blocked, req)

	if blocked.Code != http.StatusTooManyRequests {
		t.Fatalf("same ip: got status %d, want 429", blocked.Code)
	}

	other := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1000"
	r.ServeHTTP(other, req)

	if other.Code != http.StatusOK {
		t.Fatalf("different ip: got status %d, want 200", other.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, 20*time.Millisecond, nil)
	r := limitedRouter(rl)

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("first request: got status %d, want 200", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: got status %d, want 429", code)
	}

	time.Sleep(30 * time.Millisecond)

	if code := send(); code != http.StatusOK {
		t.Fatalf("after window: got status %d, want 200", code)
	}
}

type failingStore struct{}

func (failingStore) Incr(string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("backend down")
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute, failingStore{})
	r := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200 when store errors", i+1, w.Code)
		}
	}
}
