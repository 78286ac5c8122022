package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/clipboard"
	"github.com/joaograca03/CalcApp/internal/storage"
)

type harness struct {
	tools     *Tools
	clipboard *clipboard.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cb := clipboard.NewMemory()
	c := calculator.New(context.Background(), calculator.Options{
		Storage:   storage.NewMemory(),
		Clipboard: cb,
	})
	return &harness{tools: NewTools(calculator.NewSession(c)), clipboard: cb}
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected tool result content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func decodeResult(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), v); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
}

func TestPressSequenceEvaluates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.tools.PressSequence(ctx, call(map[string]any{
		"tokens": []any{"2", "+", "3", "*", "4", "="},
	}))
	if err != nil {
		t.Fatalf("PressSequence: %v", err)
	}

	var out calculator.SequenceResponse
	decodeResult(t, res, &out)

	if len(out.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(out.Steps))
	}
	if out.Display.Result != "14" {
		t.Fatalf("expected result 14, got %q", out.Display.Result)
	}
	if out.Display.Expression != "2+3*4 = 14" {
		t.Fatalf("expected expression line %q, got %q", "2+3*4 = 14", out.Display.Expression)
	}
}

func TestPressSequenceRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing", map[string]any{}, "non-empty array"},
		{"not strings", map[string]any{"tokens": []any{"1", 2.0}}, "tokens[1]"},
		{"unknown token", map[string]any{"tokens": []any{"1", "?"}}, "token 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.tools.PressSequence(ctx, call(tt.args))
			if err != nil {
				t.Fatalf("PressSequence: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected tool error")
			}
			if msg := resultText(t, res); !strings.Contains(msg, tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestPressButtonRequiresToken(t *testing.T) {
	h := newHarness(t)

	res, err := h.tools.PressButton(context.Background(), call(map[string]any{}))
	if err != nil {
		t.Fatalf("PressButton: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for missing token")
	}
}

func TestPressButtonUpdatesDisplay(t *testing.T) {
	h := newHarness(t)

	res, err := h.tools.PressButton(context.Background(), call(map[string]any{"token": "9"}))
	if err != nil {
		t.Fatalf("PressButton: %v", err)
	}

	var d calculator.DisplayState
	decodeResult(t, res, &d)
	if d.Result != "9" || d.State != calculator.StateBuilding {
		t.Fatalf("expected building display with 9, got %+v", d)
	}
}

func TestEvaluateExpression(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.tools.EvaluateExpression(ctx, call(map[string]any{"expression": "sqrt(2)**2"}))
	if err != nil {
		t.Fatalf("EvaluateExpression: %v", err)
	}
	var out calculator.EvaluateResponse
	decodeResult(t, res, &out)
	if out.Result != "2" {
		t.Fatalf("expected 2, got %q", out.Result)
	}
	if out.Backend != calculator.BackendSymbolic {
		t.Fatalf("expected backend %q, got %q", calculator.BackendSymbolic, out.Backend)
	}

	res, err = h.tools.EvaluateExpression(ctx, call(map[string]any{"expression": "1/0"}))
	if err != nil {
		t.Fatalf("EvaluateExpression: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for division by zero")
	}

	if len(h.tools.session.History()) != 0 {
		t.Fatal("expected evaluate_expression to leave history untouched")
	}
}

func TestSimplifyExpression(t *testing.T) {
	h := newHarness(t)

	res, err := h.tools.SimplifyExpression(context.Background(), call(map[string]any{"expression": "π+π"}))
	if err != nil {
		t.Fatalf("SimplifyExpression: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "2*pi" {
		t.Fatalf("expected 2*pi, got %q", got)
	}
}

func TestHistoryTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, seq := range [][]any{{"1", "+", "1", "="}, {"C", "3", "*", "3", "="}} {
		if _, err := h.tools.PressSequence(ctx, call(map[string]any{"tokens": seq})); err != nil {
			t.Fatalf("PressSequence: %v", err)
		}
	}

	res, err := h.tools.ListHistory(ctx, call(nil))
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	var hist calculator.HistoryResponse
	decodeResult(t, res, &hist)
	if len(hist.Entries) != 2 || hist.Entries[0].Result != "9" {
		t.Fatalf("expected newest entry 9 first, got %+v", hist.Entries)
	}

	res, err = h.tools.CopyHistoryResult(ctx, call(map[string]any{"index": 1.0}))
	if err != nil {
		t.Fatalf("CopyHistoryResult: %v", err)
	}
	var copied calculator.CopyResponse
	decodeResult(t, res, &copied)
	if text, _ := h.clipboard.Text(); text != "2" || copied.Result != "2" {
		t.Fatalf("expected clipboard 2, got %q (response %q)", text, copied.Result)
	}

	res, err = h.tools.DeleteHistoryEntry(ctx, call(map[string]any{"index": 0.0}))
	if err != nil {
		t.Fatalf("DeleteHistoryEntry: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if entries := h.tools.session.History(); len(entries) != 1 || entries[0].Result != "2" {
		t.Fatalf("expected only entry 2 to remain, got %+v", entries)
	}

	res, err = h.tools.DeleteHistoryEntry(ctx, call(map[string]any{"index": 5.0}))
	if err != nil {
		t.Fatalf("DeleteHistoryEntry: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for out-of-range index")
	}

	if _, err := h.tools.ClearHistory(ctx, call(nil)); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if n := len(h.tools.session.History()); n != 0 {
		t.Fatalf("expected empty history, got %d entries", n)
	}
}

func TestIndexArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{"float", 3.0, 3, false},
		{"int", 2, 2, false},
		{"fractional", 1.5, 0, true},
		{"negative", -1.0, 0, true},
		{"string", "1", 0, true},
		{"missing", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := indexArg(call(map[string]any{"index": tt.value}))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestResources(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	contents, err := h.tools.ReadKeypad(ctx, mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("ReadKeypad: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected text resource, got %T", contents[0])
	}
	if text.URI != KeypadURI || text.MIMEType != "application/json" {
		t.Fatalf("unexpected resource metadata: %s %s", text.URI, text.MIMEType)
	}
	if !strings.Contains(text.Text, `"√"`) {
		t.Fatalf("expected keypad JSON to list the √ button, got %s", text.Text)
	}

	contents, err = h.tools.ReadHistory(ctx, mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if text := contents[0].(mcp.TextResourceContents); text.URI != HistoryURI {
		t.Fatalf("expected URI %s, got %s", HistoryURI, text.URI)
	}
}

func TestNewServerBuilds(t *testing.T) {
	h := newHarness(t)
	if s := NewServer(h.tools.session, "test"); s == nil {
		t.Fatal("expected server")
	}
}
