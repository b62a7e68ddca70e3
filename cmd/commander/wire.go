package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Cyclone1070/commander/internal/config"
	"github.com/Cyclone1070/commander/internal/gateway"
	"github.com/Cyclone1070/commander/internal/ledger"
	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/provider/anthropic"
	"github.com/Cyclone1070/commander/internal/provider/gemini"
	"github.com/Cyclone1070/commander/internal/provider/ollama"
	"github.com/Cyclone1070/commander/internal/provider/openai"
	"github.com/Cyclone1070/commander/internal/tool/directory"
	"github.com/Cyclone1070/commander/internal/tool/file"
	"github.com/Cyclone1070/commander/internal/tool/service/executor"
	"github.com/Cyclone1070/commander/internal/tool/service/fs"
	"github.com/Cyclone1070/commander/internal/tool/service/git"
	"github.com/Cyclone1070/commander/internal/tool/service/jail"
	"github.com/Cyclone1070/commander/internal/tool/shell"
	"github.com/Cyclone1070/commander/internal/workflow/heartbeat"
	"github.com/Cyclone1070/commander/internal/workflow/router"
	"github.com/Cyclone1070/commander/internal/workflow/session"
	"github.com/Cyclone1070/commander/internal/workflow/toolmanager"
)

// defaultKeyEnv is consulted when a tier does not name its API key variable.
var defaultKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// BackendFactory builds the completion backend for one tier.
type BackendFactory func(ctx context.Context, tier config.TierConfig, httpClient *http.Client) (router.Backend, error)

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config    *config.Config
	Logger    *slog.Logger
	Jail      *jail.Jail
	Ledger    *ledger.Ledger
	Tools     *toolmanager.ToolManager
	Router    *router.Router
	Pool      *session.Pool
	Heartbeat *heartbeat.Heartbeat
}

// Close cancels in-flight sessions and waits for them.
func (d *Dependencies) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, newBackend BackendFactory) (*Dependencies, error) {
	osFS := fs.NewOSFileSystem()

	j, err := jail.New(cfg.Sandbox.Root, osFS, cfg.Tools.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("sandbox root: %w", err)
	}
	logger.Info("sandbox ready", "root", j.Root())

	rates := make(map[string]ledger.Rate, len(cfg.Budget.Pricing))
	for model, r := range cfg.Budget.Pricing {
		rates[model] = ledger.Rate{Input: r.Input, Output: r.Output}
	}
	pricing, err := ledger.NewPricing(rates, ledger.Rate{Input: cfg.Budget.Fallback.Input, Output: cfg.Budget.Fallback.Output})
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}
	spend := ledger.New(cfg.Budget.CeilingUSD, pricing)

	httpClient, err := provider.NewHTTPClient(cfg.Network.Proxy)
	if err != nil {
		return nil, err
	}

	tiers := make(map[router.Tier]router.Binding, 3)
	for tier, tc := range map[router.Tier]config.TierConfig{
		router.TierReasoning: cfg.Models.Reasoning,
		router.TierFastCoder: cfg.Models.FastCoder,
		router.TierWatchdog:  cfg.Models.Watchdog,
	} {
		backend, err := newBackend(ctx, tc, httpClient)
		if err != nil {
			return nil, fmt.Errorf("%s backend: %w", tier, err)
		}
		tiers[tier] = router.Binding{Backend: backend, Model: tc.Model}
	}

	// The router and the refactor tool depend on each other through the
	// gateway, so the tool manager is filled after the router exists.
	tools := toolmanager.NewToolManager(logger)
	rt := router.New(tiers, spend, tools, logger,
		router.WithMaxLoops(cfg.Workflow.MaxLoops),
		router.WithSystemPrompt(cfg.Workflow.SystemPrompt),
	)

	gw := gateway.New(j, rt, executor.NewOSCommandExecutor(cfg), logger,
		gateway.WithMaxRetries(cfg.Workflow.MaxRetries),
		gateway.WithTimeout(time.Duration(cfg.Workflow.ValidationTimeoutSeconds)*time.Second),
	)

	var ignore interface {
		ShouldIgnore(rel string, isDir bool) bool
	} = git.NoOpMatcher{}
	if cfg.Tools.RespectGitignore {
		m, err := git.NewIgnoreMatcher(j.Root(), osFS)
		if err != nil {
			logger.Warn("gitignore disabled", "error", err)
		} else {
			ignore = m
		}
	}

	tools.Register(directory.NewListFilesTool(j, ignore, cfg))
	tools.Register(file.NewReadFileTool(j))
	tools.Register(file.NewRefactorFileTool(gw))
	tools.Register(shell.NewValidateCodeTool(shell.NewPolicy(cfg.Tools.CommandAllow, cfg.Tools.CommandDeny), gw))

	return &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Jail:      j,
		Ledger:    spend,
		Tools:     tools,
		Router:    rt,
		Pool:      session.NewPool(rt, int64(cfg.Workflow.MaxSessions), cfg.Workflow.HistoryLimit, logger),
		Heartbeat: heartbeat.New(rt, spend, logger),
	}, nil
}

// newSDKBackend builds a real backend for tier. A missing API key is not a
// startup failure; the backend reports it on first use.
func newSDKBackend(logger *slog.Logger, getenv func(string) string) BackendFactory {
	return func(ctx context.Context, tier config.TierConfig, httpClient *http.Client) (router.Backend, error) {
		keyEnv := tier.APIKeyEnv
		if keyEnv == "" {
			keyEnv = defaultKeyEnv[tier.Provider]
		}
		apiKey := ""
		if keyEnv != "" {
			apiKey = getenv(keyEnv)
			if apiKey == "" {
				logger.Warn("api key not set", "provider", tier.Provider, "model", tier.Model, "env", keyEnv)
			}
		}

		switch tier.Provider {
		case "openai":
			return openai.NewClient(tier.BaseURL, apiKey, httpClient), nil
		case "anthropic":
			return anthropic.NewClient(tier.BaseURL, apiKey, httpClient), nil
		case "gemini":
			client, err := gemini.NewRealGeminiClient(ctx, apiKey, httpClient)
			if err != nil {
				return nil, fmt.Errorf("gemini client: %w", err)
			}
			return gemini.New(client), nil
		case "ollama":
			return ollama.NewClient(tier.BaseURL, httpClient)
		default:
			return nil, fmt.Errorf("unknown provider %q", tier.Provider)
		}
	}
}

func osBackends(logger *slog.Logger) BackendFactory {
	return newSDKBackend(logger, os.Getenv)
}
