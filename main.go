package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/ledger-audit/cmd/balance"
	"fjacquet/ledger-audit/cmd/check"
	"fjacquet/ledger-audit/cmd/classify"
	"fjacquet/ledger-audit/cmd/root"
	"fjacquet/ledger-audit/cmd/rules"
	"fjacquet/ledger-audit/cmd/split"
	"fjacquet/ledger-audit/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure global log level directly - this affects ALL new loggers
	logLevel := configureLogLevelDirectly()

	// 3. Force this level on ALL existing and future loggers
	logging.SetAllLogLevels(logLevel)

	// 4. Now that logging is properly configured, initialize root command
	root.Init()

	// 5. Add all subcommands
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(check.Cmd)
	root.Cmd.AddCommand(split.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
	root.Cmd.AddCommand(balance.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}

	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global log level for all logrus instances
// and returns the configured level
func configureLogLevelDirectly() logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	// Set the global logrus level BEFORE any logging happens
	logrus.SetLevel(logLevel)

	return logLevel
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
