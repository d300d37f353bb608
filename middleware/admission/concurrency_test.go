package admission

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"guru-gateway/middleware/admission/domain"
	"guru-gateway/middleware/admission/infra"
)

func TestConcurrencyMiddleware_RejectsWhenNoSlotFreesUp(t *testing.T) {
	hold := make(chan struct{})
	entered := make(chan struct{})

	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Max:            1,
		AcquireTimeout: 50 * time.Millisecond,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-hold
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r := httptest.NewRequest(http.MethodGet, "http://example/api/chat", nil)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}()

	<-entered

	// com o único slot ocupado, a segunda requisição estoura o timeout
	r := httptest.NewRequest(http.MethodGet, "http://example/api/chat", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when saturated, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("expected JSON error body, got %q", ct)
	}

	close(hold)
	wg.Wait()
}

func TestConcurrencyMiddleware_ReleasesSlotAfterRequest(t *testing.T) {
	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Max:            1,
		AcquireTimeout: 50 * time.Millisecond,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodGet, "http://example/api/chat", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("sequential request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestConcurrencyMiddleware_ZeroMaxDisables(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := ConcurrencyMiddleware(ConcurrencyOptions{})(next)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}

func TestConcurrencyMiddleware_RecordsSaturatedEvent(t *testing.T) {
	events := infra.NewMemoryEventStore()
	hold := make(chan struct{})
	entered := make(chan struct{})

	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Max:            1,
		AcquireTimeout: 20 * time.Millisecond,
		Events:         events,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-hold
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}()
	<-entered

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)

	close(hold)
	wg.Wait()

	if got := events.ByKind()[domain.EventSaturated]; got != 1 {
		t.Fatalf("expected 1 saturated event, got %d", got)
	}
}
