// Package classify handles the ledger classification command
package classify

import (
	"context"
	"os"

	"fjacquet/ledger-audit/cmd/common"
	"fjacquet/ledger-audit/cmd/root"
	"fjacquet/ledger-audit/internal/fileutils"

	"github.com/spf13/cobra"
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify <file-or-directory>",
	Short: "Assign accounts to unclassified postings",
	Long: `Classify resolves every posting booked to the unclassified placeholder
using, in order: learned overrides, the configured rule set, and the AI
fallback. Resolved files are rewritten in place after a backup unless
--dry-run is given.`,
	Args: cobra.ExactArgs(1),
	Run:  classifyFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&root.DryRun, "dry-run", "n", false, "Report proposed changes without writing")
}

func classifyFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	files, err := fileutils.ResolveInputFiles(args[0])
	if err != nil {
		root.Log.Fatalf("Cannot resolve input: %v", err)
	}
	if len(files) == 0 {
		root.Log.Warn("No ledger files found")
		return
	}

	eng, cleanup, err := common.BuildEngine(ctx, root.Cfg, root.Log, root.DryRun)
	if err != nil {
		root.Log.Fatalf("Cannot build classification chain: %v", err)
	}

	r := eng.ProcessFiles(ctx, files)
	cleanup()
	r.Print(os.Stdout, !root.NoColor)
	root.Exit(r.ExitCode())
}
