// Package config loads server configuration from a YAML file with sane
// defaults for every field. The file is optional; a missing file yields the
// default configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config file location when set.
const EnvConfigPath = "BROWSER_USE_MCP_CONFIG"

// Config is the full server configuration.
type Config struct {
	Browser BrowserSection `yaml:"browser"`
	Agent   AgentSection   `yaml:"agent"`
}

// BrowserSection configures the shared browser session.
type BrowserSection struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool `yaml:"headless"`

	// NavigationTimeoutMS is the per-navigation timeout in milliseconds.
	NavigationTimeoutMS float64 `yaml:"navigation_timeout_ms"`
}

// AgentSection configures the navigation agent and its LLM backend.
type AgentSection struct {
	// Model is the chat model used for navigation decisions.
	Model string `yaml:"model"`

	// BaseURL points at an OpenAI-compatible API; empty means the default.
	BaseURL string `yaml:"base_url"`

	// MaxSteps bounds the number of observe-decide-act iterations per search.
	MaxSteps int `yaml:"max_steps"`

	// StepTimeoutS bounds the wall-clock duration of one whole search, in seconds.
	StepTimeoutS int `yaml:"step_timeout_s"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Browser: BrowserSection{
			Headless:            true,
			NavigationTimeoutMS: 30000,
		},
		Agent: AgentSection{
			Model:        "gpt-4o-mini",
			MaxSteps:     15,
			StepTimeoutS: 120,
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.browser-use-mcp/config.yaml, honoring the EnvConfigPath override.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".browser-use-mcp", "config.yaml"), nil
}

// Load reads configuration from path, overlaying it on the defaults.
// A missing file is not an error; a malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps invalid values back to defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Browser.NavigationTimeoutMS <= 0 {
		c.Browser.NavigationTimeoutMS = def.Browser.NavigationTimeoutMS
	}
	if c.Agent.Model == "" {
		c.Agent.Model = def.Agent.Model
	}
	if c.Agent.MaxSteps <= 0 {
		c.Agent.MaxSteps = def.Agent.MaxSteps
	}
	if c.Agent.StepTimeoutS <= 0 {
		c.Agent.StepTimeoutS = def.Agent.StepTimeoutS
	}
}

// StepTimeout returns the agent timeout as a duration.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Agent.StepTimeoutS) * time.Second
}
