// Package integrity enforces the structural invariants of a ledger:
// balanced postings, duplicate files, and format conventions. It never
// mutates transactions and never auto-corrects findings.
package integrity

import (
	"fmt"

	"fjacquet/ledger-audit/internal/models"

	"github.com/shopspring/decimal"
)

// ValidationStatus classifies the balance state of one transaction.
type ValidationStatus string

const (
	// StatusBalanced means non-elided amounts sum to zero within epsilon.
	StatusBalanced ValidationStatus = "balanced"
	// StatusUnbalanced means the sum has a nonzero residual.
	StatusUnbalanced ValidationStatus = "unbalanced"
	// StatusAmbiguous means the transaction cannot be checked: more than
	// one elided posting, or mixed commodities.
	StatusAmbiguous ValidationStatus = "ambiguous"
)

// balanceEpsilon is the tolerance for balance comparisons.
var balanceEpsilon = decimal.NewFromFloat(0.005)

// ValidationResult is the outcome of balance validation for one transaction.
type ValidationResult struct {
	Status   ValidationStatus
	Residual models.Money // set when Status is StatusUnbalanced
	Reason   string       // set when Status is StatusAmbiguous
	// Inferred is the computed amount of the single elided posting,
	// when there is exactly one. Elision is a notational convenience,
	// not an error: such transactions are balanced by construction.
	Inferred *models.Money
}

// ValidateTransaction checks the double-entry balance invariant: the sum of
// all non-elided amounts in the transaction's commodity must be zero within
// epsilon. Exactly one elided posting is inferred as the negated sum.
func ValidateTransaction(t *models.Transaction) ValidationResult {
	elided := 0
	commodity := ""
	sum := decimal.Zero

	for _, posting := range t.Postings {
		if posting.Elided {
			elided++
			continue
		}
		if commodity == "" {
			commodity = posting.Amount.Commodity
		} else if posting.Amount.Commodity != commodity {
			// Mixed-commodity transactions are reported ambiguous
			// rather than incorrectly balanced; conversion is out
			// of scope.
			return ValidationResult{
				Status: StatusAmbiguous,
				Reason: fmt.Sprintf("mixed commodities %s and %s", commodity, posting.Amount.Commodity),
			}
		}
		sum = sum.Add(posting.Amount.Amount)
	}

	if elided > 1 {
		return ValidationResult{
			Status: StatusAmbiguous,
			Reason: fmt.Sprintf("%d postings with elided amounts, at most 1 allowed", elided),
		}
	}

	if elided == 1 {
		inferred := models.NewMoney(sum.Neg(), commodity)
		if commodity == "" {
			inferred.Commodity = t.Commodity()
		}
		return ValidationResult{
			Status:   StatusBalanced,
			Inferred: &inferred,
		}
	}

	if sum.Abs().GreaterThan(balanceEpsilon) {
		return ValidationResult{
			Status:   StatusUnbalanced,
			Residual: models.NewMoney(sum, commodity),
		}
	}

	return ValidationResult{Status: StatusBalanced}
}

// InferredAmount returns the posting's amount, substituting the inferred
// value for an elided posting. Used for running-balance computation.
func InferredAmount(t *models.Transaction, p *models.Posting) models.Money {
	if !p.Elided {
		return p.Amount
	}
	result := ValidateTransaction(t)
	if result.Inferred != nil {
		return *result.Inferred
	}
	return models.ZeroMoney(t.Commodity())
}
