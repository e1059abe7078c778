package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()

	sessions := session.NewManager(session.Options{})
	t.Cleanup(sessions.Close)
	return NewRouter(sessions)
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterCalculatorApplySetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{"a":2,"b":3,"op":"+"}`)
	req := httptest.NewRequest(http.MethodPost, "/calculator/apply", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["result"].(string); !ok || got != "5" {
		t.Fatalf("expected result %q, got %#v", "5", payload["result"])
	}
}

func TestNewRouterSessionRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var created map[string]any
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected session id")
	}
	if created["previous_value"] != nil || created["operator"] != nil {
		t.Fatalf("expected null pending operation, got %#v", created)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/keys", bytes.NewReader([]byte(`{"keys":"5+3="}`)))
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var snap map[string]any
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if snap["display"] != "8" {
		t.Fatalf("expected display %q, got %#v", "8", snap["display"])
	}
}

func TestNewRouterUnknownSessionIsJSON404(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if ct := w.Result().Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}
}
