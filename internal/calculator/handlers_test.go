package calculator

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"calc-service/internal/engine"
	"calc-service/internal/keypad"
	"calc-service/internal/observability"
	"calc-service/internal/session"
	"calc-service/internal/store"
	"calc-service/internal/testutil"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fixture struct {
	router   http.Handler
	sessions *session.Manager
	history  *store.HistoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	history := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.json"))
	sessions := session.NewManager(history)
	t.Cleanup(sessions.Close)

	r := chi.NewRouter()
	NewHandlers(history).RegisterRoutes(r, sessions)

	return &fixture{router: r, sessions: sessions, history: history}
}

func (f *fixture) press(t *testing.T, token, button string) StateResponse {
	t.Helper()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Button: button})
	req.Header.Set("Authorization", "Bearer "+token)

	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp StateResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func TestPressRequiresSession(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Button: "5"})
	w := testutil.ExecuteRequest(req, f.router)

	testutil.CheckResponseCode(t, http.StatusUnauthorized, w.Code)
}

func TestPressRejectsUnknownSessionToken(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Button: "5"})
	req.Header.Set("Authorization", "Bearer not-a-session")
	w := testutil.ExecuteRequest(req, f.router)

	testutil.CheckResponseCode(t, http.StatusUnauthorized, w.Code)
}

func TestPressSequenceComputesAndRecords(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	var resp StateResponse
	for _, button := range []string{"5", "+", "3", "="} {
		resp = f.press(t, token, button)
	}

	if resp.Display != "8" {
		t.Fatalf("expected display %q, got %q", "8", resp.Display)
	}
	if !resp.FinalAnswer {
		t.Fatal("expected final_answer to be set after equals")
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error: %q", resp.Error)
	}

	f.sessions.Close()

	records := f.history.History("alice")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].Expression(); got != "5 + 3 = 8" {
		t.Fatalf("expected expression %q, got %q", "5 + 3 = 8", got)
	}
}

func TestPressReportsPreview(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	f.press(t, token, "5")
	f.press(t, token, "+")
	resp := f.press(t, token, "3")

	if resp.Preview != "5 + 3 = 8" {
		t.Fatalf("expected preview %q, got %q", "5 + 3 = 8", resp.Preview)
	}
}

func TestPressDivisionByZeroIsRecoverable(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	for _, button := range []string{"8", "/", "0"} {
		f.press(t, token, button)
	}
	resp := f.press(t, token, "=")

	if resp.Error == "" {
		t.Fatal("expected error message in response")
	}
	if resp.Display != "0" {
		t.Fatalf("expected display reset to %q, got %q", "0", resp.Display)
	}

	// The session stays usable.
	resp = f.press(t, token, "7")
	if resp.Display != "7" || resp.Error != "" {
		t.Fatalf("expected working session after error, got %+v", resp)
	}
}

func TestPressUnknownButtonIsBadRequest(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Button: "%"})
	req.Header.Set("Authorization", "Bearer "+token)
	w := testutil.ExecuteRequest(req, f.router)

	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestStateSnapshot(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	f.press(t, token, "4")
	f.press(t, token, "2")

	req := httptest.NewRequest(http.MethodGet, "/calculator/state", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp StateResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "42" {
		t.Fatalf("expected display %q, got %q", "42", resp.Display)
	}
}

func TestHistoryEndpointIsolatesUsers(t *testing.T) {
	f := newFixture(t)
	alice := f.sessions.Open("alice")
	bob := f.sessions.Open("bob")

	for _, button := range []string{"5", "+", "3", "="} {
		f.press(t, alice, button)
	}

	req := httptest.NewRequest(http.MethodGet, "/calculator/history", nil)
	req.Header.Set("Authorization", "Bearer "+bob)
	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Username != "bob" {
		t.Fatalf("expected username %q, got %q", "bob", resp.Username)
	}
	if len(resp.Records) != 0 {
		t.Fatalf("expected empty history for bob, got %+v", resp.Records)
	}
}

func TestEvaluateBinary(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	b := 10.0
	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{A: 2, Op: "^", B: &b})
	req.Header.Set("Authorization", "Bearer "+token)
	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp EvaluateResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Result != 1024 {
		t.Fatalf("expected result 1024, got %g", resp.Result)
	}
	if resp.Operation != string(engine.OpPower) {
		t.Fatalf("expected operation %q, got %q", engine.OpPower, resp.Operation)
	}
}

func TestEvaluateUnary(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{A: 5, Op: "!"})
	req.Header.Set("Authorization", "Bearer "+token)
	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp EvaluateResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Result != 120 {
		t.Fatalf("expected result 120, got %g", resp.Result)
	}
}

func TestEvaluateErrors(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	zero := 0.0
	minusOne := -1.0
	tests := []struct {
		name string
		req  EvaluateRequest
	}{
		{name: "division by zero", req: EvaluateRequest{A: 8, Op: "/", B: &zero}},
		{name: "unknown operator", req: EvaluateRequest{A: 1, Op: "%", B: &zero}},
		{name: "missing operand b", req: EvaluateRequest{A: 1, Op: "+"}},
		{name: "sqrt of negative", req: EvaluateRequest{A: -4, Op: "sqrt"}},
		{name: "non-finite result", req: EvaluateRequest{A: 0, Op: "^", B: &minusOne}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", tc.req)
			req.Header.Set("Authorization", "Bearer "+token)
			w := testutil.ExecuteRequest(req, f.router)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEvaluateNonFiniteResultIsBadRequestWithJSONBody(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	// 0 ^ -1 is +Inf, which json.Encode cannot represent. The handler must
	// reject it before the 200 header goes out, never leave an empty body.
	b := -1.0
	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{A: 0, Op: "^", B: &b})
	req.Header.Set("Authorization", "Bearer "+token)
	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	testutil.DecodeJSONBody(t, w.Body, &body)
	if body["error"] == "" {
		t.Fatalf("expected error message in body, got %#v", body)
	}
}

func TestEvaluateDoesNotTouchSessionOrHistory(t *testing.T) {
	f := newFixture(t)
	token := f.sessions.Open("alice")

	b := 3.0
	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{A: 5, Op: "+", B: &b})
	req.Header.Set("Authorization", "Bearer "+token)
	w := testutil.ExecuteRequest(req, f.router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	sess, _ := f.sessions.Lookup(token)
	if got := sess.Snapshot(); got != keypad.Initial() {
		t.Fatalf("evaluate must not touch session state, got %+v", got)
	}

	f.sessions.Close()
	if got := f.history.History("alice"); len(got) != 0 {
		t.Fatalf("evaluate must not be recorded, got %+v", got)
	}
}
