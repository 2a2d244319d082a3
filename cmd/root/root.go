// Package root contains the root command for the application
package root

import (
	"os"

	"fjacquet/ledger-audit/internal/config"
	"fjacquet/ledger-audit/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// Cfg is the resolved configuration, populated in PersistentPreRun
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ledger-audit",
		Short: "Classify, check and maintain plain-text ledger files.",
		Long: `ledger-audit parses plain-text double-entry ledger files, assigns
accounts to unclassified postings via rules and an optional AI fallback,
checks balance and convention integrity, and writes files back
deterministically with backups.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to ledger-audit!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				logrus.Fatalf("invalid configuration: %v", err)
			}
			Cfg = cfg

			logger := config.ConfigureLoggingFromConfig(cfg)
			Log = logging.NewLogrusAdapterFromLogger(logger)
		},
	}

	// Flags shared by the file-processing commands
	DryRun  bool
	NoColor bool

	// Rules command flags
	Format string
	Output string

	// Balance command flags
	Account string
	AsOf    string
)

// Init initializes the root command and all persistent flags
func Init() {
	Cmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "Disable colored output")
}

// Exit terminates the process with the given status code. Split out so
// command funcs stay testable.
var Exit = os.Exit
