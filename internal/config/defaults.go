package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile and environment.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Sandbox  SandboxConfig  `json:"sandbox" toml:"sandbox" yaml:"sandbox"`
	Budget   BudgetConfig   `json:"budget" toml:"budget" yaml:"budget"`
	Models   ModelsConfig   `json:"models" toml:"models" yaml:"models"`
	Workflow WorkflowConfig `json:"workflow" toml:"workflow" yaml:"workflow"`
	Tools    ToolsConfig    `json:"tools" toml:"tools" yaml:"tools"`
	Network  NetworkConfig  `json:"network" toml:"network" yaml:"network"`
	Log      LogConfig      `json:"log" toml:"log" yaml:"log"`
}

type SandboxConfig struct {
	// Root is the only directory tools may touch. Default: "." (current directory)
	Root string `json:"root" toml:"root" yaml:"root"`
}

// Rate is a price in USD per 1,000 units.
type Rate struct {
	Input  float64 `json:"input" toml:"input" yaml:"input"`
	Output float64 `json:"output" toml:"output" yaml:"output"`
}

type BudgetConfig struct {
	CeilingUSD float64         `json:"ceiling_usd" toml:"ceiling_usd" yaml:"ceiling_usd"` // Default: 2.00
	Pricing    map[string]Rate `json:"pricing" toml:"pricing" yaml:"pricing"`
	Fallback   Rate            `json:"fallback" toml:"fallback" yaml:"fallback"` // Default: 0.01 / 0.03
}

// TierConfig binds a model tier to a backend.
type TierConfig struct {
	Provider  string `json:"provider" toml:"provider" yaml:"provider"` // openai | anthropic | gemini | ollama
	Model     string `json:"model" toml:"model" yaml:"model"`
	BaseURL   string `json:"base_url" toml:"base_url" yaml:"base_url"`
	APIKeyEnv string `json:"api_key_env" toml:"api_key_env" yaml:"api_key_env"`
}

type ModelsConfig struct {
	Reasoning TierConfig `json:"reasoning" toml:"reasoning" yaml:"reasoning"`
	FastCoder TierConfig `json:"fast_coder" toml:"fast_coder" yaml:"fast_coder"`
	Watchdog  TierConfig `json:"watchdog" toml:"watchdog" yaml:"watchdog"`
}

type WorkflowConfig struct {
	MaxLoops                 int    `json:"max_loops" toml:"max_loops" yaml:"max_loops"`                                        // Default: 5
	MaxRetries               int    `json:"max_retries" toml:"max_retries" yaml:"max_retries"`                                  // Default: 3
	ValidationTimeoutSeconds int    `json:"validation_timeout_seconds" toml:"validation_timeout_seconds" yaml:"validation_timeout_seconds"` // Default: 30
	GracefulShutdownMs       int    `json:"graceful_shutdown_ms" toml:"graceful_shutdown_ms" yaml:"graceful_shutdown_ms"`       // Default: 2000
	HistoryLimit             int    `json:"history_limit" toml:"history_limit" yaml:"history_limit"`                            // Default: 20
	MaxSessions              int    `json:"max_sessions" toml:"max_sessions" yaml:"max_sessions"`                               // Default: 4
	SystemPrompt             string `json:"system_prompt" toml:"system_prompt" yaml:"system_prompt"`
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize int64 `json:"max_file_size" toml:"max_file_size" yaml:"max_file_size"` // Default: 5 * 1024 * 1024 (5MB)

	// Command Execution
	MaxCommandOutputSize int64    `json:"max_command_output_size" toml:"max_command_output_size" yaml:"max_command_output_size"` // Default: 1MB
	CommandAllow         []string `json:"command_allow" toml:"command_allow" yaml:"command_allow"`
	CommandDeny          []string `json:"command_deny" toml:"command_deny" yaml:"command_deny"`

	// Listing
	RespectGitignore bool     `json:"respect_gitignore" toml:"respect_gitignore" yaml:"respect_gitignore"` // Default: true
	CodeExtensions   []string `json:"code_extensions" toml:"code_extensions" yaml:"code_extensions"`
}

type NetworkConfig struct {
	// Proxy is a socks5:// or http:// URL used for backend traffic. Empty means direct.
	Proxy string `json:"proxy" toml:"proxy" yaml:"proxy"`
}

type LogConfig struct {
	Level   string `json:"level" toml:"level" yaml:"level"`       // debug | info | warn | error
	Journal bool   `json:"journal" toml:"journal" yaml:"journal"` // Also log to journald when under systemd
}

// DefaultSystemPrompt is the reasoning tier's system turn.
const DefaultSystemPrompt = "You are the commander of an autonomous coding agent. " +
	"Inspect the mission sandbox with the available tools, repair code with refactor_file, " +
	"confirm fixes with validate_code, and finish with a short report of what changed."

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			Root: ".",
		},
		Budget: BudgetConfig{
			CeilingUSD: 2.00,
			Pricing: map[string]Rate{
				"gpt-4o":         {Input: 0.005, Output: 0.015},
				"deepseek-coder": {Input: 0.00014, Output: 0.00028},
				"llama3":         {Input: 0, Output: 0},
			},
			Fallback: Rate{Input: 0.01, Output: 0.03},
		},
		Models: ModelsConfig{
			Reasoning: TierConfig{
				Provider:  "openai",
				Model:     "gpt-4o",
				APIKeyEnv: "OPENAI_API_KEY",
			},
			FastCoder: TierConfig{
				Provider:  "openai",
				Model:     "deepseek-coder",
				BaseURL:   "https://api.deepseek.com/v1",
				APIKeyEnv: "DEEPSEEK_API_KEY",
			},
			Watchdog: TierConfig{
				Provider: "ollama",
				Model:    "llama3",
				BaseURL:  "http://localhost:11434",
			},
		},
		Workflow: WorkflowConfig{
			MaxLoops:                 5,
			MaxRetries:               3,
			ValidationTimeoutSeconds: 30,
			GracefulShutdownMs:       2000,
			HistoryLimit:             20,
			MaxSessions:              4,
			SystemPrompt:             DefaultSystemPrompt,
		},
		Tools: ToolsConfig{
			MaxFileSize:          5 * 1024 * 1024,
			MaxCommandOutputSize: 1024 * 1024,
			CommandDeny:          []string{"sudo", "su", "rm", "dd", "mkfs", "shutdown", "reboot"},
			RespectGitignore:     true,
			CodeExtensions:       []string{".py", ".ts", ".tsx", ".go"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
