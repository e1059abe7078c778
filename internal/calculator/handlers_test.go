package calculator

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"go-chi-calculator/internal/testutil"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r)
	return r
}

func TestApplyHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantResult string
		wantOp     string
	}{
		{name: "add", body: `{"a":2,"b":3,"op":"+"}`, wantStatus: http.StatusOK, wantResult: "5", wantOp: "add"},
		{name: "float noise", body: `{"a":0.1,"b":0.2,"op":"add"}`, wantStatus: http.StatusOK, wantResult: "0.3", wantOp: "add"},
		{name: "divide", body: `{"a":1,"b":3,"op":"/"}`, wantStatus: http.StatusOK, wantResult: "0.3333333333", wantOp: "divide"},
		{name: "divide by zero", body: `{"a":1,"b":0,"op":"/"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "unknown operator", body: `{"a":1,"b":2,"op":"%"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"a":`, wantStatus: http.StatusBadRequest},
	}

	router := newTestRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := testutil.NewJSONRequest(http.MethodPost, "/calculator/apply", tc.body)
			w := testutil.ExecuteRequest(r, router)

			testutil.CheckResponseCode(t, tc.wantStatus, w.Code)
			if tc.wantStatus != http.StatusOK {
				var body map[string]string
				testutil.DecodeJSONBody(t, w.Body, &body)
				if body["error"] == "" {
					t.Fatal("expected error message in body")
				}
				return
			}

			var resp ApplyResponse
			testutil.DecodeJSONBody(t, w.Body, &resp)
			if resp.Result != tc.wantResult {
				t.Fatalf("expected result %q, got %q", tc.wantResult, resp.Result)
			}
			if resp.Operation != tc.wantOp {
				t.Fatalf("expected operation %q, got %q", tc.wantOp, resp.Operation)
			}
		})
	}
}

func TestEvaluateHandler(t *testing.T) {
	tests := []struct {
		name        string
		keys        string
		wantDisplay string
		wantHistory int
	}{
		{name: "add", keys: "5+3=", wantDisplay: "8", wantHistory: 1},
		{name: "chain", keys: "2+3*4{Enter}", wantDisplay: "20", wantHistory: 2},
		{name: "divide by zero", keys: "7/0=", wantDisplay: ErrorDisplay, wantHistory: 0},
		{name: "escape clears", keys: "12+7{Escape}", wantDisplay: "0", wantHistory: 0},
		{name: "unbound keys ignored", keys: "4x2", wantDisplay: "42", wantHistory: 0},
	}

	router := newTestRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := `{"keys":"` + tc.keys + `"}`
			r := testutil.NewJSONRequest(http.MethodPost, "/calculator/evaluate", body)
			w := testutil.ExecuteRequest(r, router)

			testutil.CheckResponseCode(t, http.StatusOK, w.Code)

			var snap Snapshot
			testutil.DecodeJSONBody(t, w.Body, &snap)
			if snap.Display != tc.wantDisplay {
				t.Fatalf("expected display %q, got %q", tc.wantDisplay, snap.Display)
			}
			if len(snap.History) != tc.wantHistory {
				t.Fatalf("expected %d history entries, got %d", tc.wantHistory, len(snap.History))
			}
		})
	}
}

func TestEvaluateHandlerRejectsBadScripts(t *testing.T) {
	router := newTestRouter()

	for _, body := range []string{`{"keys":""}`, `{"keys":"1+{Tab}"}`, `not json`} {
		r := testutil.NewJSONRequest(http.MethodPost, "/calculator/evaluate", body)
		w := testutil.ExecuteRequest(r, router)
		testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
	}
}
