package ledgerwriter

import (
	"sort"
	"time"

	"fjacquet/ledger-audit/internal/integrity"
	"fjacquet/ledger-audit/internal/models"

	"github.com/shopspring/decimal"
)

// YearLedger is one year's partition of a ledger. For every year after the
// first, Transactions starts with a synthetic opening-balance transaction
// carrying forward the running balance of every account that was nonzero
// at the year boundary.
type YearLedger struct {
	Year         int
	Transactions []*models.Transaction
}

// SplitByYear partitions transactions per calendar year. Each partition is
// independently balanced: summed transaction by transaction, a partition's
// trailing balances equal the corresponding prefix sums of the unsplit
// ledger.
func SplitByYear(txns []*models.Transaction) []YearLedger {
	if len(txns) == 0 {
		return nil
	}

	ordered := make([]*models.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	byYear := make(map[int][]*models.Transaction)
	var years []int
	for _, t := range ordered {
		year := t.Year()
		if _, seen := byYear[year]; !seen {
			years = append(years, year)
		}
		byYear[year] = append(byYear[year], t)
	}
	sort.Ints(years)

	balances := newBalanceTracker()
	var result []YearLedger
	for i, year := range years {
		partition := byYear[year]
		if i > 0 {
			if opening := balances.openingTransaction(year); opening != nil {
				partition = append([]*models.Transaction{opening}, partition...)
			}
		}
		result = append(result, YearLedger{Year: year, Transactions: partition})

		for _, t := range byYear[year] {
			balances.apply(t)
		}
	}
	return result
}

// balanceTracker accumulates per-account running balances, inferring
// elided amounts.
type balanceTracker struct {
	amounts     map[string]decimal.Decimal
	commodities map[string]string
}

func newBalanceTracker() *balanceTracker {
	return &balanceTracker{
		amounts:     make(map[string]decimal.Decimal),
		commodities: make(map[string]string),
	}
}

func (b *balanceTracker) apply(t *models.Transaction) {
	for _, posting := range t.Postings {
		amount := integrity.InferredAmount(t, posting)
		current, ok := b.amounts[posting.Account]
		if !ok {
			current = decimal.Zero
		}
		b.amounts[posting.Account] = current.Add(amount.Amount)
		if b.commodities[posting.Account] == "" {
			b.commodities[posting.Account] = amount.Commodity
		}
	}
}

// openingTransaction synthesizes the opening-balance entry for the given
// year: one posting per account with a nonzero running balance, closed by
// an elided equity counter-posting so the entry balances by construction.
// Returns nil when every balance is zero.
func (b *balanceTracker) openingTransaction(year int) *models.Transaction {
	var accounts []string
	for account, amount := range b.amounts {
		if account == models.OpeningBalanceAccount {
			continue
		}
		if !amount.IsZero() {
			accounts = append(accounts, account)
		}
	}
	if len(accounts) == 0 {
		return nil
	}
	sort.Strings(accounts)

	t := &models.Transaction{
		Date:        time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Description: models.OpeningBalanceDescription,
		Status:      models.StatusCleared,
	}
	for _, account := range accounts {
		t.Postings = append(t.Postings, &models.Posting{
			Account:         account,
			OriginalAccount: account,
			Amount:          models.NewMoney(b.amounts[account], b.commodities[account]),
		})
	}
	t.Postings = append(t.Postings, &models.Posting{
		Account:         models.OpeningBalanceAccount,
		OriginalAccount: models.OpeningBalanceAccount,
		Elided:          true,
	})
	return t
}
