// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Ledger struct {
		DecimalMark        string `mapstructure:"decimal_mark" yaml:"decimal_mark"`
		ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
		DefaultCommodity   string `mapstructure:"default_commodity" yaml:"default_commodity"`
	} `mapstructure:"ledger" yaml:"ledger"`

	Rules struct {
		File         string `mapstructure:"file" yaml:"file"`
		AccountsFile string `mapstructure:"accounts_file" yaml:"accounts_file"`
		OverridesDB  string `mapstructure:"overrides_db" yaml:"overrides_db"`
	} `mapstructure:"rules" yaml:"rules"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Classification struct {
		AutoLearn bool `mapstructure:"auto_learn" yaml:"auto_learn"`
	} `mapstructure:"classification" yaml:"classification"`

	Write struct {
		BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`
	} `mapstructure:"write" yaml:"write"`

	Workers int `mapstructure:"workers" yaml:"workers"`

	External struct {
		LedgerBinary string `mapstructure:"ledger_binary" yaml:"ledger_binary"`
	} `mapstructure:"external" yaml:"external"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.ledger-audit")
	v.AddConfigPath(".ledger-audit")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. API key always comes from an unprefixed env var
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ledger.decimal_mark", ".")
	v.SetDefault("ledger.thousands_separator", ",")
	v.SetDefault("ledger.default_commodity", "USD")

	v.SetDefault("rules.file", "rules.yaml")
	v.SetDefault("rules.accounts_file", "")
	v.SetDefault("rules.overrides_db", "overrides.db")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 10)
	v.SetDefault("ai.max_retries", 2)

	v.SetDefault("classification.auto_learn", true)

	v.SetDefault("write.backup_dir", "")

	v.SetDefault("workers", 4)

	v.SetDefault("external.ledger_binary", "hledger")
}

// validateConfig validates the configuration values.
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Ledger.DecimalMark != "." && config.Ledger.DecimalMark != "," {
		return fmt.Errorf("ledger.decimal_mark must be '.' or ',', got: %s", config.Ledger.DecimalMark)
	}

	if config.Ledger.DecimalMark == config.Ledger.ThousandsSeparator {
		return fmt.Errorf("ledger.decimal_mark and ledger.thousands_separator cannot both be %q", config.Ledger.DecimalMark)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}

		if config.AI.MaxRetries < 0 || config.AI.MaxRetries > 10 {
			return fmt.Errorf("ai.max_retries must be between 0 and 10, got: %d", config.AI.MaxRetries)
		}
	}

	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got: %d", config.Workers)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
