// Package gateway applies model-written code to the sandbox and validates it
// with local commands, repairing the file when validation fails.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/tool/helper/content"
	"github.com/Cyclone1070/commander/internal/tool/service/executor"
)

const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 30 * time.Second

	fence = "```"
)

// Gateway is the only component that writes model output to disk.
type Gateway struct {
	jail       fileJail
	coder      fastCoder
	runner     commandRunner
	logger     *slog.Logger
	maxRetries int
	timeout    time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithMaxRetries bounds validation runs in ValidateAndRepair.
func WithMaxRetries(n int) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxRetries = n
		}
	}
}

// WithTimeout sets the per-run validation timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func New(jail fileJail, coder fastCoder, runner commandRunner, logger *slog.Logger, opts ...Option) *Gateway {
	if jail == nil {
		panic("jail is required")
	}
	if coder == nil {
		panic("coder is required")
	}
	if runner == nil {
		panic("runner is required")
	}
	g := &Gateway{
		jail:       jail,
		coder:      coder,
		runner:     runner,
		logger:     logging.OrDiscard(logger),
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Refactor rewrites path with the fast coder's answer to objective.
// Nothing is written unless the coder returned a final answer.
func (g *Gateway) Refactor(ctx context.Context, path, objective string) bool {
	original, err := g.jail.Read(path)
	if err != nil {
		g.logger.Error("refactor read failed", "path", path, "error", err)
		return false
	}

	res := g.coder.AskFastCoder(ctx, "Refactor this file to achieve: "+objective, original)
	if !res.Final() {
		g.logger.Error("refactor produced no code", "path", path, "outcome", res.Outcome, "answer", res.Answer)
		return false
	}

	if err := g.jail.Write(path, StripFences(res.Answer)); err != nil {
		g.logger.Error("refactor write failed", "path", path, "error", err)
		return false
	}

	g.logger.Info("refactored", "path", path)
	return true
}

// StripFences keeps only the lines inside ``` fences. Lines starting with
// ``` toggle the fence and are dropped. Text with no fence line is returned
// unchanged, including text whose only backticks are inline: a reply like
// "use ```x``` here" is written verbatim rather than reduced to nothing.
func StripFences(text string) string {
	lines := content.SplitLines(text)
	hasFence := false
	for _, line := range lines {
		if strings.HasPrefix(line, fence) {
			hasFence = true
			break
		}
	}
	if !hasFence {
		return text
	}

	var kept []string
	inside := false
	for _, line := range lines {
		if strings.HasPrefix(line, fence) {
			inside = !inside
			continue
		}
		if inside {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ValidateAndRepair runs args from the sandbox root. Each failing run feeds
// the error log back through Refactor, up to the retry bound. A timeout, a
// command that cannot start, or cancellation ends the loop at once.
func (g *Gateway) ValidateAndRepair(ctx context.Context, path string, args []string) bool {
	command := strings.Join(args, " ")

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		res, err := g.runner.RunWithTimeout(ctx, args, g.jail.Root(), nil, g.timeout)
		switch {
		case err == nil && res.ExitCode == 0:
			g.logger.Info("validation passed", "path", path, "command", command, "attempt", attempt)
			return true
		case errors.Is(err, executor.ErrTimeout):
			g.logger.Warn("validation timed out", "path", path, "command", command, "timeout", g.timeout)
			return false
		case res == nil || ctx.Err() != nil:
			g.logger.Error("validation could not run", "path", path, "command", command, "error", err)
			return false
		}

		g.logger.Info("validation failed, repairing", "path", path, "command", command,
			"attempt", attempt, "exit_code", res.ExitCode)

		objective := fmt.Sprintf("The following code failed validation via command `%s`:\n\nError Log:\n%s\n\nFix it.", command, res.Output())
		if !g.Refactor(ctx, path, objective) {
			g.logger.Warn("repair attempt failed", "path", path, "attempt", attempt)
		}
	}

	g.logger.Warn("validation retries exhausted", "path", path, "command", command, "retries", g.maxRetries)
	return false
}
