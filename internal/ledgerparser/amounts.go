package ledgerparser

import (
	"fmt"
	"strings"
	"unicode"

	"fjacquet/ledger-audit/internal/models"

	"github.com/shopspring/decimal"
)

// ParseAmountToken parses a standalone amount using the given options.
// Used outside full-file parsing, e.g. for external tool output.
func ParseAmountToken(text string, opts Options) (models.Money, error) {
	return New(opts, nil).parseAmount(text)
}

// currencySymbols are single-rune commodity markers that prefix the number,
// as in "$4.50" or "-€12.00".
var currencySymbols = map[rune]bool{
	'$': true,
	'€': true,
	'£': true,
	'¥': true,
}

// parseAmount lexes an amount token into a Money value. Accepted forms:
//
//	$4.50   -$4.50   $-4.50   4.50 USD   4.50CHF   CHF 4.50   1,234.56
//
// The commodity may be absent; the caller inherits the transaction's
// dominant commodity afterwards.
func (p *Parser) parseAmount(text string) (models.Money, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Money{}, fmt.Errorf("empty amount")
	}

	negative := false
	commodity := ""
	rest := text

	// Leading sign before a currency symbol, e.g. "-$4.50".
	if strings.HasPrefix(rest, "-") {
		negative = true
		rest = strings.TrimSpace(rest[1:])
	} else if strings.HasPrefix(rest, "+") {
		rest = strings.TrimSpace(rest[1:])
	}

	runes := []rune(rest)
	if len(runes) > 0 && currencySymbols[runes[0]] {
		commodity = string(runes[0])
		rest = strings.TrimSpace(string(runes[1:]))
	} else if i := leadingAlphaRun(rest); i > 0 && i < len(rest) && rest[i] == ' ' {
		// Prefix commodity code: "CHF 4.50".
		commodity = rest[:i]
		rest = strings.TrimSpace(rest[i:])
	}

	// Sign may also follow the currency symbol, e.g. "$-4.50".
	if strings.HasPrefix(rest, "-") {
		negative = !negative
		rest = strings.TrimSpace(rest[1:])
	}

	// Trailing commodity code: "4.50 USD" or "4.50CHF".
	if i := trailingAlphaRun(rest); i >= 0 {
		code := strings.TrimSpace(rest[i:])
		if code != "" {
			if commodity != "" {
				return models.Money{}, fmt.Errorf("two commodities in %q", text)
			}
			commodity = code
		}
		rest = strings.TrimSpace(rest[:i])
	}

	number, err := p.normalizeNumber(rest)
	if err != nil {
		return models.Money{}, fmt.Errorf("bad numeric text %q: %w", text, err)
	}

	dec, err := decimal.NewFromString(number)
	if err != nil {
		return models.Money{}, fmt.Errorf("bad numeric text %q: %w", text, err)
	}
	if negative {
		dec = dec.Neg()
	}

	return models.NewMoney(dec, commodity), nil
}

// normalizeNumber strips thousands separators and converts the configured
// decimal mark to '.' so decimal.NewFromString can take over.
func (p *Parser) normalizeNumber(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("no digits")
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9' || r == '-' || r == '+':
			b.WriteRune(r)
		case r == p.opts.DecimalMark:
			b.WriteByte('.')
		case r == p.opts.ThousandsSeparator || r == ' ' || r == '\'':
			// Thousands separators are dropped. Apostrophe and space
			// groupings are common in Swiss-style amounts.
		default:
			return "", fmt.Errorf("unexpected character %q", r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no digits")
	}
	return b.String(), nil
}

// leadingAlphaRun returns the length of the leading run of letters.
func leadingAlphaRun(s string) int {
	for i, r := range s {
		if !unicode.IsLetter(r) {
			return i
		}
	}
	return len(s)
}

// trailingAlphaRun returns the index where the trailing run of letters
// begins, or -1 if the string does not end in letters.
func trailingAlphaRun(s string) int {
	runes := []rune(s)
	end := len(runes)
	i := end
	for i > 0 && unicode.IsLetter(runes[i-1]) {
		i--
	}
	if i == end {
		return -1
	}
	// Byte offset of rune index i.
	return len(string(runes[:i]))
}
