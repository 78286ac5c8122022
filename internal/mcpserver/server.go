// Package mcpserver exposes the calculator session as Model Context Protocol
// tools and resources.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/keypad"
	"github.com/joaograca03/CalcApp/internal/observability"
)

const (
	Name = "calcapp-mcp"

	HistoryURI = "calculator://history"
	KeypadURI  = "calculator://keypad"
)

// Tools holds the handlers behind every registered tool and resource.
type Tools struct {
	session *calculator.Session
}

func NewTools(s *calculator.Session) *Tools {
	return &Tools{session: s}
}

// NewServer builds an MCP server with all calculator tools and resources.
func NewServer(s *calculator.Session, version string) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	t := NewTools(s)
	t.register(mcpServer)
	return mcpServer
}

func (t *Tools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("press_button",
		mcp.WithDescription("Press one calculator button, e.g. \"7\", \"+\", \"+/-\", \"√\", \"=\" or \"C\""),
		mcp.WithString("token",
			mcp.Required(),
			mcp.Description("Button label"),
		),
	), t.PressButton)

	s.AddTool(mcp.NewTool("press_sequence",
		mcp.WithDescription("Press several buttons in order and report the display after each one"),
		mcp.WithArray("tokens",
			mcp.Required(),
			mcp.Description("Button labels in press order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	), t.PressSequence)

	s.AddTool(mcp.NewTool("evaluate_expression",
		mcp.WithDescription("Evaluate an arithmetic expression without touching the calculator buffer or history"),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Expression such as '2+3*4' or 'sqrt(2)**2'"),
		),
	), t.EvaluateExpression)

	s.AddTool(mcp.NewTool("simplify_expression",
		mcp.WithDescription("Return the exact simplified form of an expression"),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Expression to simplify"),
		),
	), t.SimplifyExpression)

	s.AddTool(mcp.NewTool("get_display",
		mcp.WithDescription("Return the current expression line, result line and state"),
	), t.GetDisplay)

	s.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List past calculations, newest first"),
	), t.ListHistory)

	s.AddTool(mcp.NewTool("delete_history_entry",
		mcp.WithDescription("Delete one history entry by its zero-based index"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based position, 0 is the newest entry"),
		),
	), t.DeleteHistoryEntry)

	s.AddTool(mcp.NewTool("clear_history",
		mcp.WithDescription("Remove every history entry"),
	), t.ClearHistory)

	s.AddTool(mcp.NewTool("copy_history_result",
		mcp.WithDescription("Copy the result of one history entry to the clipboard"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based position, 0 is the newest entry"),
		),
	), t.CopyHistoryResult)

	s.AddResource(mcp.NewResource(HistoryURI,
		"Calculation History",
		mcp.WithResourceDescription("Past calculations, newest first"),
		mcp.WithMIMEType("application/json"),
	), t.ReadHistory)

	s.AddResource(mcp.NewResource(KeypadURI,
		"Keypad Layout",
		mcp.WithResourceDescription("Button rows of the calculator keypad"),
		mcp.WithMIMEType("application/json"),
	), t.ReadKeypad)
}

func (t *Tools) PressButton(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	token, ok := args["token"].(string)
	if !ok {
		return mcp.NewToolResultError("token is required"), nil
	}

	d, err := t.session.Press(ctx, token)
	if err != nil {
		return toolError(ctx, "press_button", err), nil
	}
	return jsonResult(d)
}

func (t *Tools) PressSequence(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	raw, ok := args["tokens"].([]any)
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("tokens must be a non-empty array of strings"), nil
	}
	tokens := make([]string, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("tokens[%d] is not a string", i)), nil
		}
		tokens = append(tokens, s)
	}

	steps, err := t.session.PressSequence(ctx, tokens)
	if err != nil {
		return toolError(ctx, "press_sequence", fmt.Errorf("token %d: %w", len(steps), err)), nil
	}
	return jsonResult(calculator.SequenceResponse{Steps: steps, Display: t.session.Display()})
}

func (t *Tools) EvaluateExpression(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	expr, ok := args["expression"].(string)
	if !ok || strings.TrimSpace(expr) == "" {
		return mcp.NewToolResultError("expression is required"), nil
	}

	result, err := t.session.Evaluate(ctx, expr)
	if err != nil {
		return toolError(ctx, "evaluate_expression", err), nil
	}
	return jsonResult(calculator.EvaluateResponse{
		Expression: expr,
		Result:     result,
		Backend:    t.session.BackendName(),
	})
}

func (t *Tools) SimplifyExpression(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	expr, ok := args["expression"].(string)
	if !ok || strings.TrimSpace(expr) == "" {
		return mcp.NewToolResultError("expression is required"), nil
	}

	out, err := t.session.Simplify(expr)
	if err != nil {
		return toolError(ctx, "simplify_expression", err), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (t *Tools) GetDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.session.Display())
}

func (t *Tools) ListHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(calculator.HistoryResponse{Entries: t.session.History()})
}

func (t *Tools) DeleteHistoryEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := indexArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.session.DeleteHistory(ctx, index); err != nil {
		return toolError(ctx, "delete_history_entry", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted history entry %d", index)), nil
}

func (t *Tools) ClearHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.session.ClearHistory(ctx)
	return mcp.NewToolResultText("History cleared"), nil
}

func (t *Tools) CopyHistoryResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := indexArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := t.session.CopyResult(ctx, index)
	if err != nil {
		return toolError(ctx, "copy_history_result", err), nil
	}
	return jsonResult(calculator.CopyResponse{Index: index, Result: result})
}

func (t *Tools) ReadHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(HistoryURI, calculator.HistoryResponse{Entries: t.session.History()})
}

func (t *Tools) ReadKeypad(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(KeypadURI, calculator.KeypadResponse{Rows: keypad.Rows()})
}

var errIndex = errors.New("index must be a non-negative whole number")

// indexArg reads the "index" argument. JSON numbers arrive as float64.
func indexArg(request mcp.CallToolRequest) (int, error) {
	args := request.GetArguments()

	switch v := args["index"].(type) {
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, errIndex
		}
		return int(v), nil
	case int:
		if v < 0 {
			return 0, errIndex
		}
		return v, nil
	default:
		return 0, errIndex
	}
}

func toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	observability.LoggerFromContext(ctx).Warn("mcp tool failed",
		zap.String("tool", tool),
		zap.Error(err),
	)
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
