// Package ledgerparser converts plain-text double-entry ledger files into
// structured transactions. Malformed input never aborts the run: unparseable
// line ranges are reported as warnings and the rest of the file is processed.
package ledgerparser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"
)

// Options controls parsing behavior.
type Options struct {
	// DecimalMark is the decimal point character, '.' or ','.
	DecimalMark rune
	// ThousandsSeparator is stripped from numeric literals before parsing.
	ThousandsSeparator rune
	// DefaultCommodity is assumed when a transaction carries no commodity.
	DefaultCommodity string
	// File names the source in reported locations.
	File string
}

// DefaultOptions returns the conventional parsing configuration.
func DefaultOptions() Options {
	return Options{
		DecimalMark:        '.',
		ThousandsSeparator: ',',
		DefaultCommodity:   models.DefaultCommodity,
	}
}

// ParseWarning reports a recoverable problem in the input text.
type ParseWarning struct {
	Source  models.SourceLocation
	Message string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source.File, w.Source.StartLine, w.Message)
}

// Parser is a single-pass finite-state line scanner over ledger text.
type Parser struct {
	opts   Options
	logger logging.Logger
}

// New creates a Parser with the given options.
func New(opts Options, logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.DecimalMark == 0 {
		opts.DecimalMark = '.'
	}
	if opts.DefaultCommodity == "" {
		opts.DefaultCommodity = models.DefaultCommodity
	}
	return &Parser{opts: opts, logger: logger}
}

// headerPattern matches a transaction header: date, optional status marker,
// free-text description.
var headerPattern = regexp.MustCompile(`^(\d{4}[-/.]\d{1,2}[-/.]\d{1,2})(?:\s+([*!]))?\s+(\S.*)$`)

// dateLayouts are the accepted date forms, tried in order.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

type scanState int

const (
	seekingTransaction scanState = iota
	inPostings
)

// Parse scans text and returns the transactions found plus warnings for
// every line range it could not interpret.
func (p *Parser) Parse(text string) ([]*models.Transaction, []ParseWarning) {
	var (
		txns     []*models.Transaction
		warnings []ParseWarning
		current  *models.Transaction
		state    = seekingTransaction
	)

	warn := func(line int, format string, args ...interface{}) {
		warnings = append(warnings, ParseWarning{
			Source:  models.SourceLocation{File: p.opts.File, StartLine: line, EndLine: line},
			Message: fmt.Sprintf(format, args...),
		})
	}

	flush := func(endLine int) {
		if current == nil {
			return
		}
		current.Source.EndLine = endLine
		if len(current.Postings) < 2 {
			warn(current.Source.StartLine, "transaction %q has %d posting(s), need at least 2",
				current.Description, len(current.Postings))
		} else {
			p.resolveCommodities(current)
			txns = append(txns, current)
		}
		current = nil
		state = seekingTransaction
	}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t\r")

		if isCommentLine(line) {
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush(lineNo - 1)
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'

		if !indented {
			// A new header closes any open transaction.
			flush(lineNo - 1)

			m := headerPattern.FindStringSubmatch(line)
			if m == nil {
				warn(lineNo, "unrecognized line: %q", strings.TrimSpace(line))
				continue
			}

			date, err := parseDate(m[1])
			if err != nil {
				warn(lineNo, "invalid date %q: %v", m[1], err)
				continue
			}

			current = &models.Transaction{
				Date:        date,
				Status:      models.Status(m[2]),
				Description: strings.TrimSpace(m[3]),
				Source:      models.SourceLocation{File: p.opts.File, StartLine: lineNo, EndLine: lineNo},
			}
			state = inPostings
			continue
		}

		// Indented line outside a transaction is noise.
		if state != inPostings || current == nil {
			warn(lineNo, "posting outside a transaction: %q", strings.TrimSpace(line))
			continue
		}

		posting, perr := p.parsePosting(line)
		if perr != nil {
			if posting == nil {
				warn(lineNo, "unparseable posting: %v", perr)
				continue
			}
			// Amount was bad but the account is usable: keep the posting
			// as elided and report the amount.
			warn(lineNo, "unparseable amount on account %s: %v", posting.Account, perr)
		}
		current.Postings = append(current.Postings, posting)
	}
	flush(len(lines))

	p.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: p.opts.File},
		logging.Field{Key: logging.FieldCount, Value: len(txns)},
	).Debug("Parsed ledger text")

	return txns, warnings
}

// parsePosting splits an indented line into account path and optional amount.
// The account/amount separator is two or more spaces or a tab.
func (p *Parser) parsePosting(line string) (*models.Posting, error) {
	body := strings.TrimSpace(line)
	if body == "" {
		return nil, fmt.Errorf("empty posting line")
	}

	account, amountText := splitPostingColumns(body)
	if account == "" {
		return nil, fmt.Errorf("missing account path")
	}

	posting := &models.Posting{
		Account:         account,
		OriginalAccount: account,
	}

	if amountText == "" {
		posting.Elided = true
		return posting, nil
	}

	amount, err := p.parseAmount(amountText)
	if err != nil {
		posting.Elided = true
		return posting, err
	}
	posting.Amount = amount
	return posting, nil
}

// splitPostingColumns separates the account path from the amount column.
// Account paths may contain single spaces; the amount column is set off by
// a tab or a run of two or more spaces.
func splitPostingColumns(body string) (account, amount string) {
	if idx := strings.IndexByte(body, '\t'); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
	}
	if idx := strings.Index(body, "  "); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx:])
	}
	return body, ""
}

// resolveCommodities assigns the transaction's dominant commodity to
// amounts parsed without one. Resolved once per transaction, at close.
func (p *Parser) resolveCommodities(t *models.Transaction) {
	dominant := ""
	for _, posting := range t.Postings {
		if !posting.Elided && posting.Amount.Commodity != "" {
			dominant = posting.Amount.Commodity
			break
		}
	}
	if dominant == "" {
		dominant = p.opts.DefaultCommodity
	}
	for _, posting := range t.Postings {
		if !posting.Elided && posting.Amount.Commodity == "" {
			posting.Amount.Commodity = dominant
		}
	}
}

// isCommentLine reports whether the line's first non-blank character is a
// recognized comment marker. A '*' counts only at column 0, so cleared
// status markers inside headers are unaffected. Comments are not retained;
// serialization does not round-trip them.
func isCommentLine(line string) bool {
	if line != "" && line[0] == '*' {
		return true
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case ';', '#', '%':
		return true
	}
	return false
}

func parseDate(token string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, token); err == nil {
			return d, nil
		}
	}
	// Single-digit month/day fallback.
	normalized := strings.NewReplacer("/", "-", ".", "-").Replace(token)
	d, err := time.Parse("2006-1-2", normalized)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}
