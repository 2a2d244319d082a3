// Package split handles splitting a ledger file into per-year files
package split

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/ledger-audit/cmd/common"
	"fjacquet/ledger-audit/cmd/root"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/ledgerwriter"
	"fjacquet/ledger-audit/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the split command
var Cmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a ledger file into one file per year",
	Long: `Split sorts the file's transactions by date, groups them by year, and
writes one file per year next to the source. Every year after the first
opens with a synthetic opening-balance transaction so each file balances
on its own.`,
	Args: cobra.ExactArgs(1),
	Run:  splitFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&root.DryRun, "dry-run", "n", false, "List target files without writing")
}

func splitFunc(cmd *cobra.Command, args []string) {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		root.Log.Fatalf("Cannot read %s: %v", path, err)
	}

	opts := common.ParserOptions(root.Cfg)
	opts.File = path
	txns, warnings := ledgerparser.New(opts, root.Log).Parse(string(data))
	for _, w := range warnings {
		root.Log.Warn(w.String())
	}
	if len(txns) == 0 {
		root.Log.Warn("No transactions found, nothing to split")
		return
	}

	years := ledgerwriter.SplitByYear(txns)
	for _, yl := range years {
		target := yearFileName(path, yl.Year)
		if root.DryRun {
			fmt.Printf("%s: %d transactions\n", target, len(yl.Transactions))
			continue
		}
		out := ledgerwriter.Serialize(yl.Transactions)
		if err := ledgerwriter.BackupAndWrite(target, []byte(out), root.Cfg.Write.BackupDir, root.Log); err != nil {
			root.Log.Fatalf("Cannot write %s: %v", target, err)
		}
		root.Log.WithFields(
			logging.Field{Key: logging.FieldFile, Value: target},
			logging.Field{Key: logging.FieldYear, Value: yl.Year},
			logging.Field{Key: logging.FieldCount, Value: len(yl.Transactions)},
		).Info("Wrote year file")
	}
}

// yearFileName maps main.ledger + 2024 to main-2024.ledger.
func yearFileName(path string, year int) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".ledger"
	}
	return fmt.Sprintf("%s-%d%s", stem, year, ext)
}
