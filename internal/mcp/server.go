package mcp

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

const instructions = `Tools for managing users, items and intents.

Intents describe what a piece of generated output should achieve. The plain
intent tools (create_intent, add_fact, ...) manage intents with free-form facts.
The v2_ tools manage articulated intents: aspects, inputs, choices, pitfalls,
assumptions, qualities and examples, plus versioned prompts with their outputs
and the insights drawn from them.

Lookups of missing records return "<Entity> not found" as plain text.`

// NewServer registers every catalog tool on a protocol server.
func NewServer(c *Catalog, name, version string) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range c.Tools() {
		s.AddTool(t.Definition(), c.Handler(t.Name))
	}
	return s
}

// HTTPHandler serves the protocol over streamable HTTP. It is stateless: each
// request stands alone.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

// ServeStdio serves the protocol on the given streams until ctx is cancelled
// or in is closed. Transport errors go to logger.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}
