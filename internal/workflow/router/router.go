// Package router drives the model tiers: the reasoning tier's tool loop and
// the single-shot fast-coder and watchdog requests. Every call is priced
// through the cost ledger and no error escapes as a Go error.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/commander/internal/ledger"
	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tier names a model role.
type Tier string

const (
	TierReasoning Tier = "reasoning"
	TierFastCoder Tier = "fast_coder"
	TierWatchdog  Tier = "watchdog"
)

const (
	DefaultMaxLoops = 5

	fastCoderSystem = "You are an expert, precise code generator. Return strictly code implementing the requirements without markdown explanations."
	watchdogSystem  = "You are a watchdog evaluating system state. Reply EXPLICITLY with 'YES' if the context indicates action is required, or 'NO' if nominal."

	watchdogTemperature = 0.1

	tracerName = "github.com/Cyclone1070/commander/internal/workflow/router"
)

// Binding ties a tier to a backend and the model identifier it is billed as.
type Binding struct {
	Backend Backend
	Model   string
}

// Router routes requests to the tier backends.
type Router struct {
	tiers        map[Tier]Binding
	ledger       chargeLedger
	tools        toolManager
	logger       *slog.Logger
	tracer       trace.Tracer
	maxLoops     int
	systemPrompt string
}

// Option configures a Router.
type Option func(*Router)

// WithMaxLoops bounds the number of reasoning requests per Run.
func WithMaxLoops(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.maxLoops = n
		}
	}
}

// WithSystemPrompt sets the reasoning tier's system turn.
func WithSystemPrompt(prompt string) Option {
	return func(r *Router) { r.systemPrompt = prompt }
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) {
		if t != nil {
			r.tracer = t
		}
	}
}

func New(tiers map[Tier]Binding, ledger chargeLedger, tools toolManager, logger *slog.Logger, opts ...Option) *Router {
	if ledger == nil {
		panic("ledger is required")
	}
	if tools == nil {
		panic("tools is required")
	}
	r := &Router{
		tiers:    tiers,
		ledger:   ledger,
		tools:    tools,
		logger:   logging.OrDiscard(logger),
		tracer:   otel.Tracer(tracerName),
		maxLoops: DefaultMaxLoops,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the reasoning tier on objective until it answers without tool
// calls, the loop bound is hit, the budget trips, or the backend fails.
// Tool calls are executed sequentially in the order received.
func (r *Router) Run(ctx context.Context, objective string, history []provider.Message) Result {
	messages := make([]provider.Message, 0, len(history)+2)
	if r.systemPrompt != "" {
		messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: r.systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, provider.Message{Role: provider.RoleUser, Content: objective})

	decls := r.tools.Declarations()

	for i := 0; i < r.maxLoops; i++ {
		if err := ctx.Err(); err != nil {
			return backendFailure(err)
		}

		resp, failed := r.complete(ctx, TierReasoning, messages, decls, nil)
		if failed != nil {
			return *failed
		}

		if len(resp.ToolCalls) == 0 {
			return finalResult(resp.Content)
		}

		messages = append(messages, provider.Message{
			Role:      provider.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, tc := range resp.ToolCalls {
			messages = append(messages, r.tools.Execute(ctx, tc))
		}
	}

	r.logger.Warn("tool loop exhausted", "max_loops", r.maxLoops)
	return loopExceeded()
}

// Ask sends one request with no tools.
func (r *Router) Ask(ctx context.Context, tier Tier, system, user string) Result {
	return r.ask(ctx, tier, system, user, nil)
}

// AskFastCoder asks the fast-coder tier to produce code for task given codeContext.
func (r *Router) AskFastCoder(ctx context.Context, task, codeContext string) Result {
	user := fmt.Sprintf("Context:\n%s\n\nTask:\n%s", codeContext, task)
	return r.ask(ctx, TierFastCoder, fastCoderSystem, user, nil)
}

// AskWatchdog reports whether the watchdog tier judges state to need action.
// Anything other than a final answer containing YES is false.
func (r *Router) AskWatchdog(ctx context.Context, state string) bool {
	res := r.ask(ctx, TierWatchdog, watchdogSystem, state, provider.Float32(watchdogTemperature))
	if !res.Final() {
		return false
	}
	return strings.Contains(strings.ToUpper(res.Answer), "YES")
}

func (r *Router) ask(ctx context.Context, tier Tier, system, user string, temperature *float32) Result {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: system},
		{Role: provider.RoleUser, Content: user},
	}
	resp, failed := r.complete(ctx, tier, messages, nil, temperature)
	if failed != nil {
		return *failed
	}
	return finalResult(resp.Content)
}

// complete performs one priced backend call. A non-nil Result means the call
// must not be used.
func (r *Router) complete(ctx context.Context, tier Tier, messages []provider.Message, decls []tool.Declaration, temperature *float32) (*provider.Response, *Result) {
	binding, ok := r.tiers[tier]
	if !ok || binding.Backend == nil {
		res := backendFailure(fmt.Errorf("no backend bound for tier %s", tier))
		return nil, &res
	}

	if err := r.ledger.Check(); err != nil {
		r.logger.Warn("circuit open, call refused", "tier", tier, "error", err)
		res := circuitOpen()
		return nil, &res
	}

	ctx, span := r.tracer.Start(ctx, "router.complete", trace.WithAttributes(
		attribute.String("tier", string(tier)),
		attribute.String("model", binding.Model),
	))
	defer span.End()

	resp, err := binding.Backend.Complete(ctx, &provider.Request{
		Model:       binding.Model,
		Messages:    messages,
		Tools:       decls,
		Temperature: temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("model call failed", "tier", tier, "model", binding.Model, "error", err)
		res := backendFailure(err)
		return nil, &res
	}

	cost, summary, err := r.ledger.Charge(resp.Usage.PromptUnits, resp.Usage.CompletionUnits, binding.Model)
	span.SetAttributes(
		attribute.Int("prompt_units", resp.Usage.PromptUnits),
		attribute.Int("completion_units", resp.Usage.CompletionUnits),
		attribute.Float64("cost_usd", cost),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, ledger.ErrCircuitOpen) {
			r.logger.Warn("spend ceiling breached", "tier", tier, "model", binding.Model, "spent", summary.Spent, "ceiling", summary.Ceiling)
			res := circuitOpen()
			return nil, &res
		}
		res := backendFailure(err)
		return nil, &res
	}

	r.logger.Info("model call", "tier", tier, "model", binding.Model,
		"prompt_units", resp.Usage.PromptUnits, "completion_units", resp.Usage.CompletionUnits,
		"cost", cost, "spent", summary.Spent)
	return resp, nil
}
