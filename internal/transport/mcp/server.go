// Package mcp exposes the agent to chat front-ends as an MCP tool server.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Cyclone1070/commander/internal/ledger"
	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/workflow/router"
	"github.com/Cyclone1070/commander/internal/workflow/session"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

const instructions = "commander runs coding objectives inside a sandboxed mission directory. " +
	"Use run_objective with a stable session_id to keep conversational context, " +
	"spend_summary to check the model budget, and reset_session to start over."

type sessionPool interface {
	Submit(ctx context.Context, sessionID, objective string) (router.Result, error)
	Reset(id string)
}

type spendReader interface {
	Summary() ledger.Summary
}

// Server adapts the session pool to MCP tool calls.
type Server struct {
	pool   sessionPool
	ledger spendReader
	logger *slog.Logger
	mcp    *server.MCPServer
}

func New(pool sessionPool, ledger spendReader, logger *slog.Logger) *Server {
	if pool == nil {
		panic("pool is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	s := &Server{pool: pool, ledger: ledger, logger: logging.OrDiscard(logger)}

	s.mcp = server.NewMCPServer(
		"commander",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.mcp.AddTool(runObjectiveTool(), s.handleRunObjective)
	s.mcp.AddTool(spendSummaryTool(), s.handleSpendSummary)
	s.mcp.AddTool(resetSessionTool(), s.handleResetSession)
	return s
}

// MCPServer returns the underlying server, for alternative transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio blocks serving MCP over stdin/stdout until the peer disconnects
// or the process is signalled.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server listening on stdio")
	return server.ServeStdio(s.mcp)
}

func runObjectiveTool() mcptypes.Tool {
	return mcptypes.NewTool("run_objective",
		mcptypes.WithDescription("Run a coding objective in the mission sandbox and return the agent's final report."),
		mcptypes.WithString("objective",
			mcptypes.Required(),
			mcptypes.Description("What the agent should accomplish."),
		),
		mcptypes.WithString("session_id",
			mcptypes.Description("Conversation identifier. Omit to start a new session; the generated id is returned."),
		),
	)
}

func spendSummaryTool() mcptypes.Tool {
	return mcptypes.NewTool("spend_summary",
		mcptypes.WithDescription("Report estimated model spend against the budget ceiling."),
	)
}

func resetSessionTool() mcptypes.Tool {
	return mcptypes.NewTool("reset_session",
		mcptypes.WithDescription("Forget the conversation history of a session."),
		mcptypes.WithString("session_id",
			mcptypes.Required(),
			mcptypes.Description("Session to reset."),
		),
	)
}

func (s *Server) handleRunObjective(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	objective, err := req.RequireString("objective")
	if err != nil || objective == "" {
		return mcptypes.NewToolResultError("objective is required"), nil
	}

	id := req.GetString("session_id", "")
	generated := id == ""
	if generated {
		id = session.NewSessionID()
	}

	res, err := s.pool.Submit(ctx, id, objective)
	if err != nil {
		s.logger.Warn("objective not started", "session", id, "error", err)
		return mcptypes.NewToolResultError(fmt.Sprintf("objective not started: %v", err)), nil
	}

	text := res.Answer
	if generated {
		text = fmt.Sprintf("%s\n\nsession_id: %s", text, id)
	}
	// Sentinel answers are plain text too.
	return mcptypes.NewToolResultText(text), nil
}

func (s *Server) handleSpendSummary(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	return mcptypes.NewToolResultText(s.ledger.Summary().String()), nil
}

func (s *Server) handleResetSession(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil || id == "" {
		return mcptypes.NewToolResultError("session_id is required"), nil
	}
	s.pool.Reset(id)
	return mcptypes.NewToolResultText(fmt.Sprintf("Session %s reset.", id)), nil
}
