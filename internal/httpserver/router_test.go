package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"promptswitcher/internal/cache"
	"promptswitcher/internal/generator"
	"promptswitcher/internal/handlers"
	"promptswitcher/internal/llm"
)

type stubProvider struct {
	text  string
	panic bool
}

func (s *stubProvider) CreateResponse(ctx context.Context, req *llm.ResponseRequest) (*llm.Response, error) {
	if s.panic {
		panic("provider exploded")
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, context.DeadlineExceeded
	}
	return &llm.Response{FlatText: &s.text}, nil
}

func newTestRouter(t *testing.T, provider llm.Provider) *chi.Mux {
	t.Helper()

	store := cache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })

	svc := generator.NewService(generator.Config{}, cache.NewLoggingCache(store), provider)
	r := chi.NewRouter()
	SetupRouter(r, zaptest.NewLogger(t), handlers.NewGenerateHandler(svc), Options{
		RequestTimeout: time.Minute,
		MaxBodyBytes:   1024,
	})
	return r
}

func TestRouterGenerate(t *testing.T) {
	r := newTestRouter(t, &stubProvider{text: `{"english":"a cat"}`})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"idea":"a cat"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != `{"english":"a cat"}` {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	r := newTestRouter(t, &stubProvider{panic: true})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"idea":"a cat"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestRouterHealthAndIndex(t *testing.T) {
	r := newTestRouter(t, &stubProvider{text: "{}"})

	for path, want := range map[string]int{
		"/":        http.StatusOK,
		"/healthz": http.StatusOK,
		"/metrics": http.StatusOK,
		"/nope":    http.StatusNotFound,
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != want {
			t.Fatalf("GET %s: expected %d, got %d", path, want, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/generate", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /generate: expected 405, got %d", rr.Code)
	}
}
