// internal/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for a run, populated from config.yaml,
// JH_* environment variables and command-line flags (in ascending precedence).
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Stability StabilityConfig `mapstructure:"stability" yaml:"stability"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer" yaml:"analyzer"`
	Filler    FillerConfig    `mapstructure:"filler" yaml:"filler"`
	Decision  DecisionConfig  `mapstructure:"decision" yaml:"decision"`
	Flow      FlowConfig      `mapstructure:"flow" yaml:"flow"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history"`
	Assist    AssistConfig    `mapstructure:"assist" yaml:"assist"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
}

// BrowserConfig controls Chrome provisioning and the page session.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	ExecutablePath    string        `mapstructure:"executable_path" yaml:"executable_path"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	Stealth           bool          `mapstructure:"stealth" yaml:"stealth"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
}

// StabilityConfig tunes the DOM stability monitor.
type StabilityConfig struct {
	QuietWindow   time.Duration `mapstructure:"quiet_window" yaml:"quiet_window"`
	PollInterval  time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FallbackDelay time.Duration `mapstructure:"fallback_delay" yaml:"fallback_delay"`
}

// AnalyzerConfig tunes classification acceptance.
type AnalyzerConfig struct {
	// AcceptanceThreshold is the minimum normalized confidence for a candidate
	// to enter the final field mapping.
	AcceptanceThreshold float64 `mapstructure:"acceptance_threshold" yaml:"acceptance_threshold"`
}

// FillerConfig tunes fill pacing and typing simulation.
type FillerConfig struct {
	// FieldsPerSecond caps how quickly consecutive fields are filled.
	FieldsPerSecond float64 `mapstructure:"fields_per_second" yaml:"fields_per_second"`
	// HumanTyping enables per-character paced entry for text-like controls.
	HumanTyping  bool          `mapstructure:"human_typing" yaml:"human_typing"`
	BaseKeyDelay time.Duration `mapstructure:"base_key_delay" yaml:"base_key_delay"`
}

// DecisionConfig tunes the decision point resolver.
type DecisionConfig struct {
	// PreferencesPath overrides the default ~/.jh/preferences.json location.
	PreferencesPath string `mapstructure:"preferences_path" yaml:"preferences_path"`
	MaxAttempts     int    `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// FlowConfig tunes the orchestrator.
type FlowConfig struct {
	CaptchaWait  time.Duration `mapstructure:"captcha_wait" yaml:"captcha_wait"`
	ArtifactsDir string        `mapstructure:"artifacts_dir" yaml:"artifacts_dir"`
}

// HistoryConfig enables optional Postgres run history when DSN is set.
type HistoryConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// AssistConfig enables the optional LLM second-opinion classifier.
type AssistConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
}

// SetDefaults registers the default value for every key so that viper
// unmarshals a fully-populated Config even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "jh")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", 90*time.Second)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.window_width", 1440)
	v.SetDefault("browser.window_height", 900)

	v.SetDefault("stability.quiet_window", 1200*time.Millisecond)
	v.SetDefault("stability.poll_interval", 250*time.Millisecond)
	v.SetDefault("stability.timeout", 12*time.Second)
	v.SetDefault("stability.fallback_delay", 3*time.Second)

	v.SetDefault("analyzer.acceptance_threshold", 0.40)

	v.SetDefault("filler.fields_per_second", 0.8)
	v.SetDefault("filler.human_typing", true)
	v.SetDefault("filler.base_key_delay", 65*time.Millisecond)

	v.SetDefault("decision.max_attempts", 3)

	v.SetDefault("flow.captcha_wait", 120*time.Second)
	v.SetDefault("flow.artifacts_dir", "artifacts")

	v.SetDefault("assist.enabled", false)
	v.SetDefault("assist.model", "gemini-2.0-flash")
}

// NewFromViper builds and validates a Config from the supplied viper instance.
func NewFromViper(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the system cannot work with.
func (c *Config) Validate() error {
	if c.Analyzer.AcceptanceThreshold < 0 || c.Analyzer.AcceptanceThreshold > 1 {
		return fmt.Errorf("analyzer.acceptance_threshold must be in [0,1], got %v", c.Analyzer.AcceptanceThreshold)
	}
	if c.Stability.QuietWindow <= 0 {
		return fmt.Errorf("stability.quiet_window must be positive")
	}
	if c.Stability.PollInterval <= 0 {
		return fmt.Errorf("stability.poll_interval must be positive")
	}
	if c.Stability.Timeout < c.Stability.QuietWindow {
		return fmt.Errorf("stability.timeout must be at least the quiet window")
	}
	if c.Decision.MaxAttempts < 1 {
		return fmt.Errorf("decision.max_attempts must be at least 1")
	}
	if c.Filler.FieldsPerSecond <= 0 {
		return fmt.Errorf("filler.fields_per_second must be positive")
	}
	if c.Assist.Enabled && c.Assist.APIKey == "" {
		return fmt.Errorf("assist.api_key is required when assist is enabled")
	}
	return nil
}

var (
	mu     sync.RWMutex
	active *Config
)

// Set installs the process-wide active configuration.
func Set(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	active = c
}

// Get returns the active configuration, or a default-populated one when Set
// has not been called (tests, library use).
func Get() *Config {
	mu.RLock()
	c := active
	mu.RUnlock()
	if c != nil {
		return c
	}
	cfg, err := NewFromViper(viper.New())
	if err != nil {
		// Defaults always validate; reaching this means a programming error.
		panic(err)
	}
	Set(cfg)
	return cfg
}
