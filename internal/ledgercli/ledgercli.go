// Package ledgercli shells out to an installed ledger-compatible tool
// (hledger or ledger) for read-only balance queries. The external tool is
// an independent audit signal, never the source of truth for writes.
package ledgercli

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"fjacquet/ledger-audit/internal/integrity"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"

	"github.com/shopspring/decimal"
)

// runner abstracts command execution for tests.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Client queries the external balance tool.
type Client struct {
	binary string
	logger logging.Logger
	run    runner
}

// New creates a client for the given binary name (e.g. "hledger").
func New(binary string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Client{
		binary: binary,
		logger: logger,
		run:    execRunner,
	}
}

// AccountBalance asks the external tool for the balance of account in
// journalFile at end of day asOf.
func (c *Client) AccountBalance(ctx context.Context, journalFile, account string, asOf time.Time) (models.Money, error) {
	// --end is exclusive, so query through the day after asOf.
	end := asOf.AddDate(0, 0, 1).Format("2006-01-02")
	out, err := c.run(ctx, c.binary, "-f", journalFile, "balance", account, "--flat", "--end", end)
	if err != nil {
		return models.Money{}, fmt.Errorf("%s balance query failed: %w", c.binary, err)
	}
	return parseBalanceOutput(string(out))
}

// parseBalanceOutput extracts the total from tabular balance output: the
// amount on the last non-empty line.
func parseBalanceOutput(out string) (models.Money, error) {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}
		// Line may be "  $4.50" or "  $4.50  Assets:Checking".
		fields := strings.Fields(line)
		amount, err := ledgerparser.ParseAmountToken(fields[0], ledgerparser.DefaultOptions())
		if err != nil {
			return models.Money{}, fmt.Errorf("cannot parse balance output line %q: %w", line, err)
		}
		return amount, nil
	}
	return models.Money{}, fmt.Errorf("empty balance output")
}

// CrossCheckResult compares the engine's own summation with the external
// tool's answer for the same account and date.
type CrossCheckResult struct {
	Account  string
	AsOf     time.Time
	Engine   models.Money
	External models.Money
	Match    bool
}

// CrossCheck computes the account's running balance from parsed
// transactions and compares it to the external tool's answer.
func (c *Client) CrossCheck(ctx context.Context, journalFile, account string, asOf time.Time, txns []*models.Transaction) (CrossCheckResult, error) {
	engine := runningBalance(txns, account, asOf)

	external, err := c.AccountBalance(ctx, journalFile, account, asOf)
	if err != nil {
		return CrossCheckResult{}, err
	}

	return CrossCheckResult{
		Account:  account,
		AsOf:     asOf,
		Engine:   engine,
		External: external,
		Match:    engine.Amount.Equal(external.Amount),
	}, nil
}

// runningBalance sums an account's postings through asOf, inferring
// elided amounts.
func runningBalance(txns []*models.Transaction, account string, asOf time.Time) models.Money {
	sum := decimal.Zero
	commodity := ""
	for _, t := range txns {
		if t.Date.After(asOf) {
			continue
		}
		for _, posting := range t.Postings {
			if posting.Account != account {
				continue
			}
			amount := integrity.InferredAmount(t, posting)
			sum = sum.Add(amount.Amount)
			if commodity == "" {
				commodity = amount.Commodity
			}
		}
	}
	return models.NewMoney(sum, commodity)
}
