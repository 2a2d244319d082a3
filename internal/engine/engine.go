// Package engine orchestrates the per-file pipeline: parse, classify,
// validate, serialize, write. It fans files out to a bounded worker pool
// and funnels every finding into one report.
package engine

import (
	"context"
	"os"
	"sync"

	"fjacquet/ledger-audit/internal/classifier"
	"fjacquet/ledger-audit/internal/integrity"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/ledgerwriter"
	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"
	"fjacquet/ledger-audit/internal/report"
)

// Options controls a run.
type Options struct {
	ParserOptions ledgerparser.Options
	DryRun        bool
	BackupDir     string
	Workers       int
	Chart         map[string]bool
}

// Engine runs the pipeline over one or more ledger files.
type Engine struct {
	classifier *classifier.Classifier
	logger     logging.Logger
	opts       Options
}

// New creates an Engine. A nil classifier skips the classification stage,
// which is what the check command wants.
func New(c *classifier.Classifier, logger logging.Logger, opts Options) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{
		classifier: c,
		logger:     logger,
		opts:       opts,
	}
}

// ProcessFile runs the full pipeline on one file and returns its findings.
// Classification mutates transactions in memory; the file on disk changes
// only when the run is not a dry run.
func (e *Engine) ProcessFile(ctx context.Context, path string) *report.FileReport {
	fr := &report.FileReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.IOFailure = &ledgerwriter.IOFailure{Op: "read", Path: path, Err: err}
		return fr
	}

	parserOpts := e.opts.ParserOptions
	parserOpts.File = path
	parser := ledgerparser.New(parserOpts, e.logger)
	txns, warnings := parser.Parse(string(data))
	fr.Transactions = len(txns)
	fr.ParseWarnings = warnings

	if e.classifier != nil {
		e.classifyAll(ctx, txns, fr)
	}

	for _, t := range txns {
		result := integrity.ValidateTransaction(t)
		if result.Status != integrity.StatusBalanced {
			fr.Validation = append(fr.Validation, report.ValidationFinding{
				Source:      t.Source,
				Description: t.Description,
				Result:      result,
			})
		}
	}

	fr.Conventions = append(fr.Conventions, integrity.CheckDateOrder(txns)...)
	fr.Conventions = append(fr.Conventions, integrity.CheckAccounts(txns, e.opts.Chart)...)

	if e.classifier != nil && !e.opts.DryRun {
		e.writeBack(path, txns, fr)
	}

	return fr
}

func (e *Engine) classifyAll(ctx context.Context, txns []*models.Transaction, fr *report.FileReport) {
	for _, t := range txns {
		if !t.HasUnclassified() {
			continue
		}
		result := e.classifier.Apply(ctx, t)
		fr.Classifications = append(fr.Classifications, report.ClassificationRecord{
			Source:      t.Source,
			Description: t.Description,
			Result:      result,
		})
	}
}

func (e *Engine) writeBack(path string, txns []*models.Transaction, fr *report.FileReport) {
	resolved := 0
	for _, rec := range fr.Classifications {
		if rec.Result.Resolved() {
			resolved++
		}
	}
	if resolved == 0 {
		// Nothing changed, leave the file untouched.
		return
	}
	out := ledgerwriter.Serialize(txns)
	if err := ledgerwriter.BackupAndWrite(path, []byte(out), e.opts.BackupDir, e.logger); err != nil {
		fr.IOFailure = err
		return
	}
	fr.Written = true
	e.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: resolved},
	).Info("Wrote classified ledger")
}

// ProcessFiles runs the pipeline over paths with a bounded worker pool.
// A single collector goroutine owns the report, so workers never share it.
func (e *Engine) ProcessFiles(ctx context.Context, paths []string) *report.Report {
	r := report.New()
	if len(paths) == 0 {
		return r
	}

	jobs := make(chan string)
	results := make(chan *report.FileReport)

	var wg sync.WaitGroup
	workers := e.opts.Workers
	if workers > len(paths) {
		workers = len(paths)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- e.ProcessFile(ctx, path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	byPath := make(map[string]*report.FileReport, len(paths))
	for fr := range results {
		byPath[fr.Path] = fr
	}

	// Report in input order regardless of completion order.
	for _, path := range paths {
		if fr, ok := byPath[path]; ok {
			r.Add(fr)
		}
	}
	return r
}

// Audit runs the read-only integrity pass over paths: parse and validate
// every file, then look for duplicate files and cross-file semantic
// duplicates. Nothing is ever written.
func (e *Engine) Audit(ctx context.Context, paths []string) *report.Report {
	r := e.ProcessFiles(ctx, paths)

	var hashed []models.LedgerFile
	byFile := make(map[string][]*models.Transaction, len(paths))
	for _, path := range paths {
		lf, err := integrity.HashFile(path)
		if err != nil {
			e.logger.WithFields(
				logging.Field{Key: logging.FieldFile, Value: path},
			).WithError(err).Warn("Cannot hash file")
			continue
		}
		hashed = append(hashed, lf)

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parserOpts := e.opts.ParserOptions
		parserOpts.File = path
		txns, _ := ledgerparser.New(parserOpts, e.logger).Parse(string(data))
		byFile[path] = txns
	}

	r.DuplicateGroups = integrity.FindDuplicateFiles(hashed)
	r.SemanticDuplicates = integrity.FindSemanticDuplicates(byFile)
	return r
}
