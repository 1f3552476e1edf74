package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedWindowStub struct {
	counts map[string]int64
	err    error
}

func newFixedWindowStub() *fixedWindowStub {
	return &fixedWindowStub{counts: make(map[string]int64)}
}

func (s *fixedWindowStub) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if s.err != nil {
		return false, 0, s.err
	}
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	store := newFixedWindowStub()
	policy := RateLimitPolicy{Name: "rename", Window: time.Minute, Limit: 2}
	handled := 0
	mw := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/internal/v1/members/rename-cid", nil)
		req.RemoteAddr = "10.0.0.7:4123"
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if i < 2 && w.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i, w.Code)
		}
		if i == 2 && w.Code != http.StatusTooManyRequests {
			t.Fatalf("request %d should be limited, got %d", i, w.Code)
		}
	}
	if handled != 2 {
		t.Fatalf("expected 2 handled requests, got %d", handled)
	}
}

func TestRateLimitKeysByClientIP(t *testing.T) {
	store := newFixedWindowStub()
	policy := RateLimitPolicy{Name: "rename", Window: time.Minute, Limit: 1}
	mw := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodPost, "/internal/v1/members/rename-cid", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("first request from %s should pass, got %d", ip, w.Code)
		}
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	mw := RateLimit(RateLimitPolicy{}, newFixedWindowStub(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/v1/members/rename-cid", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}
