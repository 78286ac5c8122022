// Command calc-mcp serves the calculator to MCP clients over stdio, or over
// streamable HTTP when CALC_MCP_PORT is set.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/app"
	"github.com/joaograca03/CalcApp/internal/mcpserver"
	"github.com/joaograca03/CalcApp/internal/observability"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	a, err := app.Bootstrap(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	mcpServer := mcpserver.NewServer(a.Session, version)

	if a.Config.MCPPort == 0 {
		// stdout carries the protocol; the zap production logger writes to stderr.
		return server.ServeStdio(mcpServer)
	}

	addr := fmt.Sprintf(":%d", a.Config.MCPPort)
	observability.Logger.Info("mcp server started", zap.String("addr", addr))
	return server.NewStreamableHTTPServer(mcpServer).Start(addr)
}
