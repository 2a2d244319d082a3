package report

import (
	"fmt"
	"io"
	"sort"

	"fjacquet/ledger-audit/internal/integrity"
	"fjacquet/ledger-audit/internal/models"

	"github.com/fatih/color"
)

var (
	headerColor     = color.New(color.Bold)
	okColor         = color.New(color.FgGreen)
	warnColor       = color.New(color.FgYellow)
	errColor        = color.New(color.FgRed)
	proposedColor   = color.New(color.FgCyan)
	unresolvedColor = color.New(color.FgMagenta)
)

// Print renders the whole report to w. With useColor false the output is
// plain text, suitable for piping.
func (r *Report) Print(w io.Writer, useColor bool) {
	if !useColor {
		color.NoColor = true
	}

	fmt.Fprintf(w, "%s (run %s)\n", headerColor.Sprint("Ledger audit report"), r.ID)

	files := make([]*FileReport, len(r.Files))
	copy(files, r.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	for _, fr := range files {
		r.printFile(w, fr)
	}

	r.printDuplicates(w)
	r.printStats(w)

	if r.HasFatal() {
		fmt.Fprintf(w, "\n%s\n", errColor.Sprint("Run failed: IO errors occurred, affected files were left untouched."))
	}
}

func (r *Report) printFile(w io.Writer, fr *FileReport) {
	fmt.Fprintf(w, "\n%s (%d transactions)\n", headerColor.Sprint(fr.Path), fr.Transactions)

	if fr.IOFailure != nil {
		fmt.Fprintf(w, "  %s %v\n", errColor.Sprint("IO FAILURE:"), fr.IOFailure)
	}

	for _, warning := range fr.ParseWarnings {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("parse:"), warning)
	}

	for _, finding := range fr.Validation {
		switch finding.Result.Status {
		case integrity.StatusUnbalanced:
			fmt.Fprintf(w, "  %s line %d %q off by %s\n",
				errColor.Sprint("unbalanced:"),
				finding.Source.StartLine, finding.Description, finding.Result.Residual)
		case integrity.StatusAmbiguous:
			fmt.Fprintf(w, "  %s line %d %q: %s\n",
				warnColor.Sprint("ambiguous:"),
				finding.Source.StartLine, finding.Description, finding.Result.Reason)
		}
	}

	for _, warning := range fr.Conventions {
		fmt.Fprintf(w, "  %s %s\n", warnColor.Sprint("convention:"), warning)
	}

	for _, rec := range fr.Classifications {
		if rec.Result.Method == models.MethodUnresolved {
			fmt.Fprintf(w, "  %s line %d %q needs manual review\n",
				unresolvedColor.Sprint("unresolved:"), rec.Source.StartLine, rec.Description)
			continue
		}
		fmt.Fprintf(w, "  %s line %d %q -> %s (%s, confidence %.2f)\n",
			proposedColor.Sprint("classify:"), rec.Source.StartLine, rec.Description,
			rec.Result.Account, rec.Result.Method, rec.Result.Confidence)
	}

	if fr.Written {
		fmt.Fprintf(w, "  %s\n", okColor.Sprint("written (backup created)"))
	}
}

func (r *Report) printDuplicates(w io.Writer) {
	for _, group := range r.DuplicateGroups {
		fmt.Fprintf(w, "\n%s %d identical files (keep %s):\n",
			warnColor.Sprint("duplicate files:"), len(group.Files), group.Survivor)
		for _, file := range group.Files {
			fmt.Fprintf(w, "  %s (modified %s)\n", file.Path, file.ModTime.Format("2006-01-02 15:04"))
		}
	}

	for _, dup := range r.SemanticDuplicates {
		fmt.Fprintf(w, "\n%s %s %q %s appears in %d places (advisory)\n",
			warnColor.Sprint("possible duplicate:"), dup.Date, dup.Description, dup.Amount, len(dup.Locations))
	}
}

func (r *Report) printStats(w io.Writer) {
	stats := r.Stats()
	if stats.Total() == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s %d override, %d rule, %d ai, %d unresolved\n",
		headerColor.Sprint("Classified:"),
		stats.ByOverride, stats.ByRule, stats.ByAIFallback, stats.Unresolved)
}
