package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ledger-audit/internal/classifier"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unclassifiedLedger = `2024-01-05 Coffee Shop
    Expenses:Unclassified  $4.50
    Assets:Checking  $-4.50
`

const unbalancedLedger = `2024-01-05 Broken Entry
    Expenses:Food  $4.51
    Assets:Checking  $-4.50
`

func writeLedger(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func coffeeClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	rules, err := classifier.NewRuleSet([]models.ClassificationRule{
		{Pattern: "coffee", Account: "Expenses:Coffee", Priority: 10},
	})
	require.NoError(t, err)
	return classifier.New(rules, nil, &logging.MockLogger{})
}

func newTestEngine(c *classifier.Classifier, dryRun bool) *Engine {
	return New(c, &logging.MockLogger{}, Options{
		ParserOptions: ledgerparser.DefaultOptions(),
		DryRun:        dryRun,
		Workers:       2,
	})
}

func TestProcessFileClassifiesAndWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.ledger", unclassifiedLedger)

	eng := newTestEngine(coffeeClassifier(t), false)
	fr := eng.ProcessFile(context.Background(), path)

	require.NoError(t, fr.IOFailure)
	assert.Equal(t, 1, fr.Transactions)
	require.Len(t, fr.Classifications, 1)
	assert.Equal(t, models.MethodRule, fr.Classifications[0].Result.Method)
	assert.True(t, fr.Written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Expenses:Coffee")
	assert.NotContains(t, string(data), "Expenses:Unclassified")

	// Backup of the original version exists.
	backups, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestProcessFileDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.ledger", unclassifiedLedger)

	eng := newTestEngine(coffeeClassifier(t), true)
	fr := eng.ProcessFile(context.Background(), path)

	require.Len(t, fr.Classifications, 1)
	assert.False(t, fr.Written)

	// File on disk untouched, no backups made.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, unclassifiedLedger, string(data))
	_, statErr := os.Stat(filepath.Join(dir, "backups"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessFileNothingToClassify(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "main.ledger", unbalancedLedger)

	eng := newTestEngine(coffeeClassifier(t), false)
	fr := eng.ProcessFile(context.Background(), path)

	// Unbalanced is reported but no classification happened, so the
	// file is not rewritten.
	require.Len(t, fr.Validation, 1)
	assert.Empty(t, fr.Classifications)
	assert.False(t, fr.Written)
}

func TestProcessFileMissing(t *testing.T) {
	eng := newTestEngine(nil, false)
	fr := eng.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "absent.ledger"))
	assert.Error(t, fr.IOFailure)
}

func TestProcessFilesPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeLedger(t, dir, "c.ledger", unclassifiedLedger),
		writeLedger(t, dir, "a.ledger", unclassifiedLedger),
		writeLedger(t, dir, "b.ledger", unclassifiedLedger),
	}

	eng := newTestEngine(nil, true)
	r := eng.ProcessFiles(context.Background(), paths)

	require.Len(t, r.Files, 3)
	for i, fr := range r.Files {
		assert.Equal(t, paths[i], fr.Path)
	}
	assert.Equal(t, 0, r.ExitCode())
}

func TestAuditFindsDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeLedger(t, dir, "a.ledger", unclassifiedLedger)
	b := writeLedger(t, dir, "b.ledger", unclassifiedLedger)
	c := writeLedger(t, dir, "c.ledger", unbalancedLedger)

	eng := newTestEngine(nil, true)
	r := eng.Audit(context.Background(), []string{a, b, c})

	require.Len(t, r.DuplicateGroups, 1)
	assert.Len(t, r.DuplicateGroups[0].Files, 2)

	// The identical coffee entries in a and b are also semantic
	// duplicates across files.
	require.Len(t, r.SemanticDuplicates, 1)
	assert.Equal(t, "coffee shop", r.SemanticDuplicates[0].Description)

	// Audit never writes.
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, unclassifiedLedger, string(data))
}

func TestAuditChartConvention(t *testing.T) {
	dir := t.TempDir()
	path := writeLedger(t, dir, "a.ledger", unbalancedLedger)

	eng := New(nil, &logging.MockLogger{}, Options{
		ParserOptions: ledgerparser.DefaultOptions(),
		Workers:       1,
		Chart:         map[string]bool{"Expenses:Food": true},
	})
	r := eng.Audit(context.Background(), []string{path})

	require.Len(t, r.Files, 1)
	// Assets:Checking is not in the chart.
	require.Len(t, r.Files[0].Conventions, 1)
	assert.Contains(t, r.Files[0].Conventions[0].Message, "Assets:Checking")
}
