package router

import (
	"context"

	"github.com/Cyclone1070/commander/internal/ledger"
	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
)

// Backend is a completion backend (one of the provider adapters).
type Backend interface {
	Complete(ctx context.Context, req *provider.Request) (*provider.Response, error)
}

// chargeLedger is the slice of the cost ledger the router needs.
type chargeLedger interface {
	// Check fails with *ledger.CircuitOpenError once the ceiling is breached.
	Check() error

	// Charge prices and records usage. It fails once the ceiling is breached,
	// including on the call that breaches it.
	Charge(promptUnits, completionUnits int, model string) (float64, ledger.Summary, error)
}

// toolManager manages tool storage and execution.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Execute runs a tool call and returns the result as a tool message.
	Execute(ctx context.Context, tc provider.ToolCall) provider.Message
}
