package integrity

import (
	"fmt"

	"fjacquet/ledger-audit/internal/models"
)

// ConventionWarning reports a violated structural convention. Conventions
// are warnings, not fatal errors.
type ConventionWarning struct {
	Source  models.SourceLocation
	Message string
}

func (w ConventionWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source.File, w.Source.StartLine, w.Message)
}

// CheckDateOrder verifies transactions appear in non-decreasing date order,
// a convention of the format rather than a parser requirement.
func CheckDateOrder(txns []*models.Transaction) []ConventionWarning {
	var warnings []ConventionWarning
	for i := 1; i < len(txns); i++ {
		prev, cur := txns[i-1], txns[i]
		if cur.Date.Before(prev.Date) {
			warnings = append(warnings, ConventionWarning{
				Source: cur.Source,
				Message: fmt.Sprintf("transaction dated %s appears after %s",
					cur.Date.Format("2006-01-02"), prev.Date.Format("2006-01-02")),
			})
		}
	}
	return warnings
}

// CheckAccounts verifies every posting uses an account path present in the
// chart of accounts. A nil or empty chart disables the check.
func CheckAccounts(txns []*models.Transaction, chart map[string]bool) []ConventionWarning {
	if len(chart) == 0 {
		return nil
	}

	var warnings []ConventionWarning
	for _, t := range txns {
		for _, posting := range t.Postings {
			if !chart[posting.Account] {
				warnings = append(warnings, ConventionWarning{
					Source:  t.Source,
					Message: fmt.Sprintf("account %q not in chart of accounts", posting.Account),
				})
			}
		}
	}
	return warnings
}
