package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memoryIdempotencyStore struct {
	data map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string]string)}
}

func (s *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = value.(string)
	return true, nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "clubs:idempotency:" + scope + ":" + id
}

func (s *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"cid":"robotics"}}`))
	})
}

func newMemberCreateRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/members", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	mw := Idempotency(store, nil)(countingHandler(&calls))

	body := `{"cid":"robotics","uid":"u1"}`

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, newMemberCreateRequest(body))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	mw.ServeHTTP(second, newMemberCreateRequest(body))
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body mismatch: %q vs %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	mw := Idempotency(store, nil)(countingHandler(&calls))

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, newMemberCreateRequest(`{"cid":"robotics","uid":"u1"}`))

	second := httptest.NewRecorder()
	mw.ServeHTTP(second, newMemberCreateRequest(`{"cid":"robotics","uid":"u2"}`))
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 on body mismatch, got %d", second.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	mw := Idempotency(store, nil)(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/members", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", w.Code)
	}
	if calls != 0 {
		t.Fatalf("handler must not run, ran %d times", calls)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	mw := Idempotency(store, nil)(countingHandler(&calls))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clubs", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if calls != 1 {
		t.Fatalf("expected read route to pass through, ran %d times", calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("reads must not persist records, got %v", store.data)
	}
}

func TestIdempotencyDoesNotPersistServerFaults(t *testing.T) {
	store := newMemoryIdempotencyStore()
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mw := Idempotency(store, nil)(failing)

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, newMemberCreateRequest(`{}`))

	if len(store.data) != 0 {
		t.Fatalf("server faults must stay replayable, got %v", store.data)
	}
}
