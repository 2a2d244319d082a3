// Package ledgerwriter serializes transactions back to ledger text and
// persists it safely: deterministic output, timestamped backups, atomic
// replacement, and year-partitioned splitting.
package ledgerwriter

import (
	"fmt"
	"strings"

	"fjacquet/ledger-audit/internal/models"
)

// accountWidth is the minimum width of the account column; amounts line up
// past it for typical account paths.
const accountWidth = 42

// postingIndent is the leading whitespace of posting lines.
const postingIndent = "    "

// Serialize renders transactions as canonical ledger text. Output is
// deterministic: the same transaction sequence always produces identical
// bytes. Comments seen at parse time are not round-tripped.
func Serialize(txns []*models.Transaction) string {
	var b strings.Builder
	for i, t := range txns {
		if i > 0 {
			b.WriteByte('\n')
		}
		serializeTransaction(&b, t)
	}
	return b.String()
}

func serializeTransaction(b *strings.Builder, t *models.Transaction) {
	b.WriteString(t.Date.Format("2006-01-02"))
	if t.Status != models.StatusUnmarked {
		b.WriteByte(' ')
		b.WriteString(string(t.Status))
	}
	b.WriteByte(' ')
	b.WriteString(t.Description)
	b.WriteByte('\n')

	for _, posting := range t.Postings {
		b.WriteString(postingIndent)
		if posting.Elided {
			b.WriteString(posting.Account)
		} else {
			fmt.Fprintf(b, "%-*s  %s", accountWidth, posting.Account, FormatAmount(posting.Amount))
		}
		b.WriteByte('\n')
	}
}

// FormatAmount renders an amount in canonical decimal form: symbol
// commodities prefix the number ($-4.50), alphabetic codes follow it
// (4.50 CHF). Values are rounded to two decimal places, so a rewrite can
// shift a stored sub-cent residual by up to half a cent.
func FormatAmount(m models.Money) string {
	value := m.Amount.StringFixed(2)
	if m.Commodity == "" {
		return value
	}
	if isSymbolCommodity(m.Commodity) {
		return m.Commodity + value
	}
	return value + " " + m.Commodity
}

func isSymbolCommodity(commodity string) bool {
	if len([]rune(commodity)) != 1 {
		return false
	}
	switch commodity {
	case "$", "€", "£", "¥":
		return true
	}
	return false
}
