package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/handlers"
	"github.com/joaograca03/CalcApp/internal/keypad"
	"github.com/joaograca03/CalcApp/internal/observability"
)

// Handler exposes a Session over HTTP.
type Handler struct {
	session *Session
}

func NewHandler(s *Session) *Handler {
	return &Handler{session: s}
}

func fail(ctx context.Context, span trace.Span, w http.ResponseWriter, op string, status int, msg string, err error) {
	observability.RecordError(ctx, span, errorCounter, w, observability.Failure{
		Op:      op,
		Message: msg,
		Err:     err,
		Status:  status,
	})
}

// decodeBody reads a JSON request body into dst. On failure it has already
// answered 400 and returns false.
func decodeBody(ctx context.Context, span trace.Span, w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(ctx, span, w, op, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

// Press handles POST /calculator/press
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.http.press")
	defer span.End()

	var req PressRequest
	if !decodeBody(ctx, span, w, r, "press", &req) {
		return
	}
	span.SetAttributes(attribute.String("calculator.token", req.Token))

	d, err := h.session.Press(ctx, req.Token)
	if err != nil {
		fail(ctx, span, w, "press", http.StatusBadRequest, err.Error(), err)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, d)
}

// Sequence handles POST /calculator/sequence. It presses every token in
// order and reports the display after each one.
func (h *Handler) Sequence(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.http.sequence")
	defer span.End()

	var req SequenceRequest
	if !decodeBody(ctx, span, w, r, "sequence", &req) {
		return
	}
	if len(req.Tokens) == 0 {
		fail(ctx, span, w, "sequence", http.StatusBadRequest, "no tokens provided", errors.New("tokens array is empty"))
		return
	}
	span.SetAttributes(attribute.Int("calculator.sequence.length", len(req.Tokens)))

	steps, err := h.session.PressSequence(ctx, req.Tokens)
	if err != nil {
		fail(ctx, span, w, "sequence", http.StatusBadRequest, fmt.Sprintf("token %d: %v", len(steps), err), err)
		return
	}

	d := h.session.Display()
	span.AddEvent("sequence.complete", trace.WithAttributes(
		attribute.String("result", d.Result),
		attribute.String("state", d.State.String()),
	))
	span.SetStatus(codes.Ok, "")

	observability.LoggerFromContext(ctx).Info("token sequence processed",
		zap.Int("tokens", len(req.Tokens)),
		zap.String("result", d.Result),
		zap.Stringer("state", d.State),
	)

	handlers.WriteJSON(w, http.StatusOK, SequenceResponse{Steps: steps, Display: d})
}

// Display handles GET /calculator/display
func (h *Handler) Display(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, h.session.Display())
}

// Evaluate handles POST /calculator/evaluate. The session buffer and history
// are left alone.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.http.evaluate")
	defer span.End()

	var req EvaluateRequest
	if !decodeBody(ctx, span, w, r, "evaluate", &req) {
		return
	}

	result, err := h.session.Evaluate(ctx, req.Expression)
	if err != nil {
		fail(ctx, span, w, "evaluate", http.StatusUnprocessableEntity, err.Error(), err)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Result:     result,
		Backend:    h.session.BackendName(),
	})
}

// Keypad handles GET /calculator/keypad
func (h *Handler) Keypad(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, KeypadResponse{Rows: keypad.Rows()})
}

// Clipboard handles GET /calculator/clipboard
func (h *Handler) Clipboard(w http.ResponseWriter, r *http.Request) {
	text, ok := h.session.ClipboardText()
	if !ok {
		handlers.WriteError(w, http.StatusNotFound, "clipboard is empty")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, ClipboardResponse{Text: text})
}

// History handles GET /calculator/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Entries: h.session.History()})
}

// ClearHistory handles DELETE /calculator/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.session.ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// DeleteHistory handles DELETE /calculator/history/{index}
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.http.history.delete")
	defer span.End()

	index, err := historyIndex(r)
	if err != nil {
		fail(ctx, span, w, "history.delete", http.StatusBadRequest, "invalid history index", err)
		return
	}
	if err := h.session.DeleteHistory(ctx, index); err != nil {
		fail(ctx, span, w, "history.delete", http.StatusNotFound, err.Error(), err)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// CopyHistory handles POST /calculator/history/{index}/copy
func (h *Handler) CopyHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.http.history.copy")
	defer span.End()

	index, err := historyIndex(r)
	if err != nil {
		fail(ctx, span, w, "history.copy", http.StatusBadRequest, "invalid history index", err)
		return
	}
	result, err := h.session.CopyResult(ctx, index)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrHistoryIndex) {
			status = http.StatusNotFound
		}
		fail(ctx, span, w, "history.copy", status, err.Error(), err)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, CopyResponse{Index: index, Result: result})
}

func historyIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing index %q: %w", raw, err)
	}
	return i, nil
}
