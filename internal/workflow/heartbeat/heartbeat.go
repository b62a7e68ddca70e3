// Package heartbeat runs the periodic watchdog check and escalates to the
// reasoning tier when the watchdog flags the state.
package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/commander/internal/ledger"
	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/workflow/router"
)

const escalationSystem = "You are the operations lead evaluating a report from the watchdog. What is the next play?"

type watcher interface {
	AskWatchdog(ctx context.Context, state string) bool
	Ask(ctx context.Context, tier router.Tier, system, user string) router.Result
}

type spendReader interface {
	Summary() ledger.Summary
}

// Report is the outcome of one tick.
type Report struct {
	ActionRequired bool
	Decision       string
	Spend          ledger.Summary
}

func (r Report) String() string {
	var b strings.Builder
	if r.ActionRequired {
		b.WriteString("Watchdog: action required\n")
		fmt.Fprintf(&b, "Decision: %s\n", r.Decision)
	} else {
		b.WriteString("Watchdog: nominal\n")
	}
	b.WriteString(r.Spend.String())
	return b.String()
}

type Heartbeat struct {
	router watcher
	ledger spendReader
	logger *slog.Logger
}

func New(router watcher, ledger spendReader, logger *slog.Logger) *Heartbeat {
	if router == nil {
		panic("router is required")
	}
	if ledger == nil {
		panic("ledger is required")
	}
	return &Heartbeat{router: router, ledger: ledger, logger: logging.OrDiscard(logger)}
}

// Tick asks the watchdog about state and, if it wants action, asks the
// reasoning tier for the next step.
func (h *Heartbeat) Tick(ctx context.Context, state string) Report {
	if !h.router.AskWatchdog(ctx, state) {
		h.logger.Debug("heartbeat nominal")
		return Report{Spend: h.ledger.Summary()}
	}

	h.logger.Info("watchdog escalation")
	res := h.router.Ask(ctx, router.TierReasoning, escalationSystem, "Watchdog context: "+state)
	if !res.Final() {
		h.logger.Warn("escalation did not complete", "outcome", res.Outcome.String())
	}
	return Report{
		ActionRequired: true,
		Decision:       res.Answer,
		Spend:          h.ledger.Summary(),
	}
}
