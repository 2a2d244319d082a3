// Package report aggregates per-file findings into a single end-of-run
// report. Findings are values, not errors: only IO failures make a run
// fatal.
package report

import (
	"time"

	"fjacquet/ledger-audit/internal/integrity"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/models"

	"github.com/google/uuid"
)

// ValidationFinding is one unbalanced or ambiguous transaction.
type ValidationFinding struct {
	Source      models.SourceLocation
	Description string
	Result      integrity.ValidationResult
}

// ClassificationRecord is the outcome of classifying one transaction.
type ClassificationRecord struct {
	Source      models.SourceLocation
	Description string
	Result      models.ClassificationResult
}

// FileReport collects everything found while processing one ledger file.
type FileReport struct {
	Path            string
	Transactions    int
	ParseWarnings   []ledgerparser.ParseWarning
	Validation      []ValidationFinding
	Classifications []ClassificationRecord
	Conventions     []integrity.ConventionWarning
	IOFailure       error
	Written         bool
}

// Stats counts classification outcomes per method.
type Stats struct {
	ByOverride   int
	ByRule       int
	ByAIFallback int
	Unresolved   int
}

// Total returns the number of classified transactions.
func (s Stats) Total() int {
	return s.ByOverride + s.ByRule + s.ByAIFallback + s.Unresolved
}

// Report is the aggregate of a whole run.
type Report struct {
	ID        string
	StartedAt time.Time

	Files              []*FileReport
	DuplicateGroups    []models.DuplicateGroup
	SemanticDuplicates []integrity.SemanticDuplicate
}

// New creates an empty run report.
func New() *Report {
	return &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// Add appends one file's findings. The caller funnels worker results
// through a single collector goroutine, so Add needs no locking.
func (r *Report) Add(fr *FileReport) {
	r.Files = append(r.Files, fr)
}

// HasFatal returns true if any file hit an IO failure.
func (r *Report) HasFatal() bool {
	for _, fr := range r.Files {
		if fr.IOFailure != nil {
			return true
		}
	}
	return false
}

// ExitCode maps the report to a process exit status: nonzero only for the
// fatal class. Advisory findings alone exit zero.
func (r *Report) ExitCode() int {
	if r.HasFatal() {
		return 1
	}
	return 0
}

// Stats tallies classification outcomes across all files.
func (r *Report) Stats() Stats {
	var s Stats
	for _, fr := range r.Files {
		for _, rec := range fr.Classifications {
			switch rec.Result.Method {
			case models.MethodOverride:
				s.ByOverride++
			case models.MethodRule:
				s.ByRule++
			case models.MethodAIFallback:
				s.ByAIFallback++
			case models.MethodUnresolved:
				s.Unresolved++
			}
		}
	}
	return s
}

// FindingCount returns the number of advisory findings across all files.
func (r *Report) FindingCount() int {
	n := len(r.DuplicateGroups) + len(r.SemanticDuplicates)
	for _, fr := range r.Files {
		n += len(fr.ParseWarnings) + len(fr.Validation) + len(fr.Conventions)
	}
	return n
}
