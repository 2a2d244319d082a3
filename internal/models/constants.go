package models

const (
	// UnclassifiedAccount is the placeholder assigned to postings that
	// have not been categorized yet.
	UnclassifiedAccount = "Expenses:Unclassified"

	// OpeningBalanceAccount is the equity counter-account used by
	// synthetic opening-balance transactions in year-partitioned files.
	OpeningBalanceAccount = "Equity:Opening Balances"

	// OpeningBalanceDescription is the description of synthetic
	// opening-balance transactions.
	OpeningBalanceDescription = "Opening Balances"

	// DefaultCommodity is assumed when a ledger carries bare numeric
	// amounts with no commodity at all.
	DefaultCommodity = "USD"
)
