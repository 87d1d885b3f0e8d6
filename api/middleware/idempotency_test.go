package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/gaprints/prints-backend/api/responses"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteMatching(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		ok      bool
	}{
		{"checkout", http.MethodPost, "/api/checkout", true},
		{"add to cart", http.MethodPost, "/api/cart/items", true},
		{"cart read", http.MethodGet, "/api/cart", false},
		{"prints", http.MethodPost, "/api/prints", false},
		{"empty", http.MethodPost, "", false},
	}

	for _, tt := range tests {
		if got := routeMatches(tt.method, tt.pattern); got != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, got)
		}
	}
}

func TestIdempotencyMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"foo":"bar"}`))
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected both submissions to run, got %d", calls)
	}
	if store.size() != 0 {
		t.Fatalf("nothing should be stored without a key")
	}
}

func TestIdempotencyMiddlewareDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 2; i++ {
		req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"foo":"bar"}`))
		req.Header.Set("Idempotency-Key", "retry-me")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("failed attempt should be retryable, handler ran %d times", calls)
	}
	if store.size() != 0 {
		t.Fatalf("failed attempt must release its claim")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"foo":"bar"}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", resp.Code)
	}

	replay := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"foo":"bar"}`))
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected replay status 202 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected content-type header preserved")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"foo":"bar"}`))
	req.Header.Set("Idempotency-Key", "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"foo":"diff"}`))
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, responses.WriteCheckoutError)

	var calls atomic.Int32
	entered := make(chan struct{})
	unblock := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		close(entered)
		<-unblock
		responses.WriteCheckoutOK(w, "GA-20260314-AB12")
	})

	send := func() *httptest.ResponseRecorder {
		req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{"items":[1]}`))
		req.Header.Set("Idempotency-Key", "double-click")
		resp := httptest.NewRecorder()
		mw(handler).ServeHTTP(resp, req)
		return resp
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- send() }()
	<-entered

	second := send()
	if second.Code != http.StatusConflict {
		t.Fatalf("expected in-flight duplicate to get 409, got %d", second.Code)
	}
	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("parse checkout envelope: %v", err)
	}
	if envelope.OK || envelope.Error == "" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}

	close(unblock)
	if resp := <-first; resp.Code != http.StatusOK {
		t.Fatalf("expected first submission 200, got %d", resp.Code)
	}

	replay := send()
	if replay.Code != http.StatusOK || !strings.Contains(replay.Body.String(), "GA-20260314-AB12") {
		t.Fatalf("expected finished record replayed, got %d %s", replay.Code, replay.Body.String())
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("handler ran %d times for one key", got)
	}
}

func TestIdempotencyMiddlewareReleasesClaimOnPanic(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "crash")
	func() {
		defer func() { _ = recover() }()
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}()

	if store.size() != 0 {
		t.Fatalf("panicking request must release its claim")
	}
}

func TestIdempotencyMiddlewareCapsBufferedBody(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, time.Hour, nil, responses.WriteCheckoutError)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	big := strings.Repeat("a", MaxRequestBody+1)
	req := requestWithPattern(http.MethodPost, "/api/checkout", "/api/checkout", strings.NewReader(big))
	req.Header.Set("Idempotency-Key", "huge")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", resp.Code)
	}
	if calls != 0 || store.size() != 0 {
		t.Fatalf("oversized body must not reach the handler or the store")
	}
}
