package models

import (
	"strings"
	"time"
)

// Status represents the clearing state of a transaction.
type Status string

const (
	// StatusUnmarked is a transaction without a status marker.
	StatusUnmarked Status = ""
	// StatusPending is a transaction marked with '!'.
	StatusPending Status = "!"
	// StatusCleared is a transaction marked with '*'.
	StatusCleared Status = "*"
)

// SourceLocation identifies where a transaction came from, for error reporting.
type SourceLocation struct {
	File      string `json:"file" yaml:"file"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

// Posting is one account/amount line within a transaction.
// An elided posting carries no explicit amount; it is inferred as the
// negation of the sum of the other postings.
type Posting struct {
	Account         string `json:"account" yaml:"account"`
	Amount          Money  `json:"amount" yaml:"amount"`
	Elided          bool   `json:"elided" yaml:"elided"`
	OriginalAccount string `json:"original_account,omitempty" yaml:"original_account,omitempty"`
}

// IsUnclassified returns true if the posting still carries the
// unclassified placeholder account.
func (p *Posting) IsUnclassified() bool {
	return p.Account == UnclassifiedAccount
}

// Transaction represents one dated entry of a plain-text ledger with
// two or more postings.
type Transaction struct {
	Date        time.Time      `json:"date" yaml:"date"`
	Description string         `json:"description" yaml:"description"`
	Status      Status         `json:"status" yaml:"status"`
	Postings    []*Posting     `json:"postings" yaml:"postings"`
	Source      SourceLocation `json:"source" yaml:"source"`
}

// Year returns the calendar year of the transaction date.
func (t *Transaction) Year() int {
	return t.Date.Year()
}

// HasUnclassified returns true if any posting carries the placeholder account.
func (t *Transaction) HasUnclassified() bool {
	for _, p := range t.Postings {
		if p.IsUnclassified() {
			return true
		}
	}
	return false
}

// Commodity returns the dominant commodity of the transaction, which is
// the commodity of the first non-elided posting. Currency-less amounts
// inherit it during parsing.
func (t *Transaction) Commodity() string {
	for _, p := range t.Postings {
		if !p.Elided && p.Amount.Commodity != "" {
			return p.Amount.Commodity
		}
	}
	return DefaultCommodity
}

// NormalizeDescription folds a description to the canonical signature form
// used as an override lookup key: lowercased with whitespace runs collapsed.
func NormalizeDescription(desc string) string {
	return strings.Join(strings.Fields(strings.ToLower(desc)), " ")
}
