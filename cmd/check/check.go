// Package check handles the read-only integrity audit command
package check

import (
	"context"
	"os"

	"fjacquet/ledger-audit/cmd/common"
	"fjacquet/ledger-audit/cmd/root"
	"fjacquet/ledger-audit/internal/engine"
	"fjacquet/ledger-audit/internal/fileutils"
	"fjacquet/ledger-audit/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check <file-or-directory>",
	Short: "Audit ledger files without modifying them",
	Long: `Check parses every ledger file under the given path and reports
unbalanced transactions, convention violations, byte-identical duplicate
files, and likely semantic duplicates across files. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	Run:  checkFunc,
}

func checkFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	files, err := fileutils.ResolveInputFiles(args[0])
	if err != nil {
		root.Log.Fatalf("Cannot resolve input: %v", err)
	}
	if len(files) == 0 {
		root.Log.Warn("No ledger files found")
		return
	}

	ruleStore := store.NewRuleStore(root.Cfg.Rules.File, root.Cfg.Rules.AccountsFile, root.Log)
	chart, err := ruleStore.LoadChartOfAccounts()
	if err != nil {
		root.Log.Fatalf("Cannot load chart of accounts: %v", err)
	}

	eng := engine.New(nil, root.Log, engine.Options{
		ParserOptions: common.ParserOptions(root.Cfg),
		Workers:       root.Cfg.Workers,
		Chart:         chart,
	})

	r := eng.Audit(ctx, files)
	r.Print(os.Stdout, !root.NoColor)
	root.Exit(r.ExitCode())
}
