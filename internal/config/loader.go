package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "commander"
)

// configFiles are probed in order when no explicit path is given.
var configFiles = []string{"config.json", "config.toml", "config.yaml"}

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a production Loader using the real filesystem and environment
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}, getenv: os.Getenv}
}

// NewLoaderWithFS creates a Loader with a custom filesystem and environment (for testing)
func NewLoaderWithFS(fs FileSystem, getenv func(string) string) *Loader {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Loader{fs: fs, getenv: getenv}
}

// Load reads configuration from path, or from the first of
// ~/.config/commander/config.{json,toml,yaml} when path is empty, and
// merges it with defaults. Environment overrides are applied last.
//
// A missing discovered file is not an error; a missing explicit path is.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, used, err := l.read(path)
	if err != nil {
		return nil, err
	}

	if data != nil {
		// Decode directly into the default config struct so present keys
		// overwrite defaults (even if zero) and missing keys are untouched.
		if err := decode(used, data, cfg); err != nil {
			return nil, &ParseError{Path: used, Cause: err}
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) read(path string) ([]byte, string, error) {
	if path != "" {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read config %s: %w", path, err)
		}
		return data, path, nil
	}

	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return nil, "", nil // Use defaults if can't get home dir
	}

	for _, name := range configFiles {
		candidate := filepath.Join(homeDir, ".config", ConfigDir, name)
		data, err := l.fs.ReadFile(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", fmt.Errorf("read config %s: %w", candidate, err)
		}
		return data, candidate, nil
	}
	return nil, "", nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		return err
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v := l.getenv("COMMANDER_ROOT"); v != "" {
		cfg.Sandbox.Root = v
	}
	if v := l.getenv("COMMANDER_SPEND_CEILING_USD"); v != "" {
		ceiling, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &EnvError{Name: "COMMANDER_SPEND_CEILING_USD", Value: v, Cause: err}
		}
		cfg.Budget.CeilingUSD = ceiling
	}
	if v := l.getenv("COMMANDER_REASONING_MODEL"); v != "" {
		cfg.Models.Reasoning.Model = v
	}
	if v := l.getenv("COMMANDER_FAST_CODER_MODEL"); v != "" {
		cfg.Models.FastCoder.Model = v
	}
	if v := l.getenv("COMMANDER_WATCHDOG_MODEL"); v != "" {
		cfg.Models.Watchdog.Model = v
	}
	if v := l.getenv("COMMANDER_PROXY"); v != "" {
		cfg.Network.Proxy = v
	}
	if v := l.getenv("COMMANDER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Load is a convenience function using the default loader
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
