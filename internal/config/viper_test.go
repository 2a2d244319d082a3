package config

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	// Run from a directory without a config file so defaults apply.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ".", cfg.Ledger.DecimalMark)
	assert.Equal(t, ",", cfg.Ledger.ThousandsSeparator)
	assert.Equal(t, "USD", cfg.Ledger.DefaultCommodity)
	assert.Equal(t, "rules.yaml", cfg.Rules.File)
	assert.Equal(t, "overrides.db", cfg.Rules.OverridesDB)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 10, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 2, cfg.AI.MaxRetries)
	assert.True(t, cfg.Classification.AutoLearn)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "hledger", cfg.External.LedgerBinary)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("LEDGER_LOG_LEVEL", "debug")
	t.Setenv("LEDGER_WORKERS", "8")

	cfg, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Workers)
}

func TestInitializeConfigAPIKeyFromEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LEDGER_AI_ENABLED", "true")

	cfg, err := InitializeConfig()
	require.NoError(t, err)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Log.Level = "info"
		cfg.Log.Format = "text"
		cfg.Ledger.DecimalMark = "."
		cfg.Ledger.ThousandsSeparator = ","
		cfg.Workers = 4
		return cfg
	}

	assert.NoError(t, validateConfig(valid()))

	cfg := valid()
	cfg.Log.Level = "noisy"
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Log.Format = "xml"
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Ledger.DecimalMark = ";"
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Ledger.ThousandsSeparator = "."
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.Workers = 0
	assert.Error(t, validateConfig(cfg))

	cfg = valid()
	cfg.AI.Enabled = true
	assert.Error(t, validateConfig(cfg), "AI enabled without API key")

	cfg = valid()
	cfg.AI.Enabled = true
	cfg.AI.APIKey = "key"
	cfg.AI.TimeoutSeconds = 10
	assert.NoError(t, validateConfig(cfg))
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.Log.Format = "text"
	logger = ConfigureLoggingFromConfig(cfg)
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LEDGER_AUDIT_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("LEDGER_AUDIT_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("LEDGER_AUDIT_MISSING_KEY", "fallback"))
}
