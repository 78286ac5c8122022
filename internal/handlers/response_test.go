package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		status int
		msg    string
	}{
		{status: http.StatusBadRequest, msg: "invalid request body"},
		{status: http.StatusNotFound, msg: "history index out of range"},
		{status: http.StatusUnprocessableEntity, msg: "math error: division by zero"},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.status, tc.msg)

			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected Content-Type application/json, got %q", ct)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response body: %v", err)
			}
			if len(body) != 1 || body["error"] != tc.msg {
				t.Fatalf("expected only error %q, got %v", tc.msg, body)
			}
		})
	}
}

func TestWriteJSONEncodesValue(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, struct {
		Result string `json:"result"`
	}{Result: "12"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if body["result"] != "12" {
		t.Fatalf("expected result %q, got %q", "12", body["result"])
	}
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if body.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}
