// Package balance handles the external balance cross-check command
package balance

import (
	"context"
	"fmt"
	"os"
	"time"

	"fjacquet/ledger-audit/cmd/common"
	"fjacquet/ledger-audit/cmd/root"
	"fjacquet/ledger-audit/internal/ledgercli"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/ledgerwriter"

	"github.com/spf13/cobra"
)

// Cmd represents the balance command
var Cmd = &cobra.Command{
	Use:   "balance <file>",
	Short: "Cross-check an account balance against an external ledger tool",
	Long: `Balance computes an account's running balance from the file and compares
it with the answer of the configured external tool (hledger or ledger).
A mismatch is advisory: it flags either a parsing divergence or file
drift, never a write error.`,
	Args: cobra.ExactArgs(1),
	Run:  balanceFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Account, "account", "a", "", "Account to check")
	Cmd.Flags().StringVar(&root.AsOf, "as-of", "", "Balance date YYYY-MM-DD (default today)")
	_ = Cmd.MarkFlagRequired("account")
}

func balanceFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	path := args[0]

	asOf := time.Now()
	if root.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", root.AsOf)
		if err != nil {
			root.Log.Fatalf("Invalid --as-of date %q: %v", root.AsOf, err)
		}
		asOf = parsed
	}

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

	client := ledgercli.New(root.Cfg.External.LedgerBinary, root.Log)
	result, err := client.CrossCheck(ctx, path, root.Account, asOf, txns)
	if err != nil {
		root.Log.Fatalf("Cross-check failed: %v", err)
	}

	fmt.Printf("%s as of %s\n", result.Account, result.AsOf.Format("2006-01-02"))
	fmt.Printf("  engine:   %s\n", ledgerwriter.FormatAmount(result.Engine))
	fmt.Printf("  external: %s\n", ledgerwriter.FormatAmount(result.External))
	if result.Match {
		fmt.Println("  match")
	} else {
		fmt.Println("  MISMATCH")
	}
}
