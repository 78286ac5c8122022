package calculator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/joaograca03/CalcApp/internal/testutil"
)

func newTestRouter(t *testing.T, opts Options) (http.Handler, *Session) {
	t.Helper()
	s := NewSession(New(context.Background(), opts))
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(s))
	return r, s
}

func TestPressHandler(t *testing.T) {
	router, _ := newTestRouter(t, Options{})

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Token: "7"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var d DisplayState
	testutil.DecodeJSONBody(t, w.Body, &d)
	if d.Result != "7" || d.State != StateBuilding {
		t.Fatalf("unexpected display %+v", d)
	}
}

func TestPressHandlerRejectsUnknownToken(t *testing.T) {
	router, s := newTestRouter(t, Options{})

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Token: "log"}), router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	if msg := testutil.ErrorMessage(t, w.Body); !strings.Contains(msg, "unknown token") {
		t.Fatalf("expected unknown token error, got %q", msg)
	}
	if s.Display().Result != "0" {
		t.Fatalf("expected session to be untouched, got %+v", s.Display())
	}
}

func TestPressHandlerRejectsBadBody(t *testing.T) {
	router, _ := newTestRouter(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/calculator/press", strings.NewReader("{"))
	w := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	if msg := testutil.ErrorMessage(t, w.Body); msg != "invalid request body" {
		t.Fatalf("expected %q, got %q", "invalid request body", msg)
	}
}

func TestSequenceHandler(t *testing.T) {
	router, _ := newTestRouter(t, Options{})

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sequence", SequenceRequest{Tokens: []string{"9", "/", "0", "="}}), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SequenceResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if len(resp.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(resp.Steps))
	}
	if resp.Steps[1].Display.Result != "9/" {
		t.Fatalf("expected intermediate result %q, got %q", "9/", resp.Steps[1].Display.Result)
	}
	if resp.Display.Result != ErrorText || resp.Display.State != StateErrored {
		t.Fatalf("expected error display, got %+v", resp.Display)
	}
}

func TestSequenceHandlerErrors(t *testing.T) {
	router, s := newTestRouter(t, Options{})

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sequence", SequenceRequest{}), router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sequence", SequenceRequest{Tokens: []string{"1", "2", "?", "3"}}), router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
	if msg := testutil.ErrorMessage(t, w.Body); !strings.HasPrefix(msg, "token 2:") {
		t.Fatalf("expected failing token index in %q", msg)
	}
	if s.Display().Result != "12" {
		t.Fatalf("expected tokens before the bad one to apply, got %+v", s.Display())
	}
}

func TestDisplayHandler(t *testing.T) {
	router, s := newTestRouter(t, Options{})
	if _, err := s.Press(context.Background(), "π"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/display", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var d DisplayState
	testutil.DecodeJSONBody(t, w.Body, &d)
	if d.Result != "π" {
		t.Fatalf("expected %q, got %q", "π", d.Result)
	}
}

func TestEvaluateHandler(t *testing.T) {
	router, s := newTestRouter(t, Options{})

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Expression: "2**10"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp EvaluateResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Result != "1024" || resp.Backend != BackendSymbolic {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(s.History()) != 0 {
		t.Fatal("expected stateless evaluation to leave history alone")
	}

	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Expression: "9/0"}), router)
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)
}

func TestKeypadHandler(t *testing.T) {
	router, _ := newTestRouter(t, Options{})

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/keypad", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp struct {
		Rows [][]struct {
			Label    string `json:"label"`
			Category string `json:"category"`
		} `json:"rows"`
	}
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if len(resp.Rows) == 0 || resp.Rows[0][0].Label != "AC" || resp.Rows[0][0].Category != "extra" {
		t.Fatalf("unexpected keypad %+v", resp.Rows)
	}
}

func TestHistoryHandlers(t *testing.T) {
	router, s := newTestRouter(t, Options{Clipboard: &memClipboard{}})
	if _, err := s.PressSequence(context.Background(), []string{"7", "+", "5", "="}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/history", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	var history HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &history)
	if len(history.Entries) != 1 || history.Entries[0].Result != "12" {
		t.Fatalf("unexpected history %+v", history.Entries)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/0/copy", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	var copied CopyResponse
	testutil.DecodeJSONBody(t, w.Body, &copied)
	if copied.Result != "12" {
		t.Fatalf("expected 12, got %+v", copied)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/9/copy", nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/history/abc", nil), router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/history", nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
	if len(s.History()) != 0 {
		t.Fatal("expected history to be cleared")
	}
}

func TestCopyHandlerWithoutClipboard(t *testing.T) {
	router, s := newTestRouter(t, Options{})
	if _, err := s.PressSequence(context.Background(), []string{"1", "="}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/0/copy", nil), router)
	testutil.CheckResponseCode(t, http.StatusInternalServerError, w.Code)
}

func TestClipboardHandler(t *testing.T) {
	router, s := newTestRouter(t, Options{Clipboard: &memClipboard{}})

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/clipboard", nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	if _, err := s.PressSequence(context.Background(), []string{"9", "/", "4", "="}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/0/copy", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/clipboard", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	var resp ClipboardResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Text != "2.25" {
		t.Fatalf("expected clipboard %q, got %q", "2.25", resp.Text)
	}
}
