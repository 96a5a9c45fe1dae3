package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromViperDefaults(t *testing.T) {
	cfg, err := NewFromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1200*time.Millisecond, cfg.Stability.QuietWindow)
	assert.Equal(t, 250*time.Millisecond, cfg.Stability.PollInterval)
	assert.Equal(t, 12*time.Second, cfg.Stability.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Stability.FallbackDelay)
	assert.InDelta(t, 0.40, cfg.Analyzer.AcceptanceThreshold, 0.0001)
	assert.InDelta(t, 0.8, cfg.Filler.FieldsPerSecond, 0.0001)
	assert.Equal(t, 65*time.Millisecond, cfg.Filler.BaseKeyDelay)
	assert.Equal(t, 3, cfg.Decision.MaxAttempts)
	assert.Equal(t, 120*time.Second, cfg.Flow.CaptchaWait)
	assert.False(t, cfg.Assist.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := NewFromViper(viper.New())
		require.NoError(t, err)
		return cfg
	}

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Analyzer.AcceptanceThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Analyzer.AcceptanceThreshold = -0.1 }},
		{"zero quiet window", func(c *Config) { c.Stability.QuietWindow = 0 }},
		{"timeout below quiet window", func(c *Config) { c.Stability.Timeout = c.Stability.QuietWindow / 2 }},
		{"zero decision attempts", func(c *Config) { c.Decision.MaxAttempts = 0 }},
		{"zero fill rate", func(c *Config) { c.Filler.FieldsPerSecond = 0 }},
		{"assist without key", func(c *Config) { c.Assist.Enabled = true; c.Assist.APIKey = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestViperOverridesApply(t *testing.T) {
	v := viper.New()
	v.Set("analyzer.acceptance_threshold", 0.55)
	v.Set("browser.headless", false)

	cfg, err := NewFromViper(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, cfg.Analyzer.AcceptanceThreshold, 0.0001)
	assert.False(t, cfg.Browser.Headless)
}
