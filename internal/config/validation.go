package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

var knownProviders = []string{"openai", "anthropic", "gemini", "ollama"}

var knownLevels = []string{"debug", "info", "warn", "error"}

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Sandbox.Root) == "" {
		errs = append(errs, "sandbox.root must not be empty")
	}

	// Budget
	if !finite(c.Budget.CeilingUSD) || c.Budget.CeilingUSD < 0 {
		errs = append(errs, "budget.ceiling_usd must be a finite number >= 0")
	}
	for model, rate := range c.Budget.Pricing {
		if !finite(rate.Input) || !finite(rate.Output) || rate.Input < 0 || rate.Output < 0 {
			errs = append(errs, fmt.Sprintf("budget.pricing.%s rates must be finite and >= 0", model))
		}
	}
	if !finite(c.Budget.Fallback.Input) || !finite(c.Budget.Fallback.Output) ||
		c.Budget.Fallback.Input <= 0 || c.Budget.Fallback.Output <= 0 {
		errs = append(errs, "budget.fallback rates must be finite and > 0")
	}

	// Models
	for name, tier := range map[string]TierConfig{
		"reasoning":  c.Models.Reasoning,
		"fast_coder": c.Models.FastCoder,
		"watchdog":   c.Models.Watchdog,
	} {
		if !slices.Contains(knownProviders, tier.Provider) {
			errs = append(errs, fmt.Sprintf("models.%s.provider must be one of %v, got %q", name, knownProviders, tier.Provider))
		}
		if tier.Model == "" {
			errs = append(errs, fmt.Sprintf("models.%s.model must not be empty", name))
		}
	}

	// Workflow
	if c.Workflow.MaxLoops < 1 {
		errs = append(errs, "workflow.max_loops must be >= 1")
	}
	if c.Workflow.MaxRetries < 1 {
		errs = append(errs, "workflow.max_retries must be >= 1")
	}
	if c.Workflow.ValidationTimeoutSeconds < 1 {
		errs = append(errs, "workflow.validation_timeout_seconds must be >= 1")
	}
	if c.Workflow.GracefulShutdownMs < 1 {
		errs = append(errs, "workflow.graceful_shutdown_ms must be >= 1")
	}
	if c.Workflow.HistoryLimit < 0 {
		errs = append(errs, "workflow.history_limit must be >= 0")
	}
	if c.Workflow.MaxSessions < 1 {
		errs = append(errs, "workflow.max_sessions must be >= 1")
	}

	// Tools
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	for _, ext := range c.Tools.CodeExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("tools.code_extensions entry %q must start with '.'", ext))
		}
	}

	// Log
	if !slices.Contains(knownLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Sprintf("log.level must be one of %v, got %q", knownLevels, c.Log.Level))
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
