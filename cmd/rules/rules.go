// Package rules handles rule inspection and export commands
package rules

import (
	"os"

	"fjacquet/ledger-audit/cmd/root"
	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and export classification rules",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the configured rule set",
	Long:  `Export writes the rule set to stdout or --output in csv, json or yaml.`,
	Run:   exportFunc,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a rule file and merge it into the configured rule set",
	Args:  cobra.ExactArgs(1),
	Run:   importFunc,
}

func init() {
	exportCmd.Flags().StringVarP(&root.Format, "format", "f", store.FormatYAML, "Output format: csv, json or yaml")
	exportCmd.Flags().StringVarP(&root.Output, "output", "o", "", "Output file (default stdout)")
	importCmd.Flags().StringVarP(&root.Format, "format", "f", "", "Input format, inferred from extension when empty")
	Cmd.AddCommand(exportCmd)
	Cmd.AddCommand(importCmd)
}

func exportFunc(cmd *cobra.Command, args []string) {
	ruleStore := store.NewRuleStore(root.Cfg.Rules.File, root.Cfg.Rules.AccountsFile, root.Log)
	records, err := ruleStore.LoadRules()
	if err != nil {
		root.Log.Fatalf("Cannot load rules: %v", err)
	}

	out := os.Stdout
	if root.Output != "" {
		f, err := os.Create(root.Output)
		if err != nil {
			root.Log.Fatalf("Cannot create %s: %v", root.Output, err)
		}
		defer f.Close()
		out = f
	}

	if err := store.ExportRules(records, root.Format, out); err != nil {
		root.Log.Fatalf("Export failed: %v", err)
	}
}

func importFunc(cmd *cobra.Command, args []string) {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		root.Log.Fatalf("Cannot open %s: %v", path, err)
	}
	defer f.Close()

	format := root.Format
	if format == "" {
		format = store.FormatFromExtension(path)
	}

	records, err := store.ImportRules(format, f)
	if err != nil {
		root.Log.Fatalf("Cannot import rules from %s: %v", path, err)
	}

	ruleStore := store.NewRuleStore(root.Cfg.Rules.File, root.Cfg.Rules.AccountsFile, root.Log)
	merged, err := ruleStore.MergeRules(records)
	if err != nil {
		root.Log.Fatalf("Cannot merge rules: %v", err)
	}
	root.Log.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: merged},
	).Info("Rule set merged")
}
