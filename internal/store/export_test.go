package store

import (
	"bytes"
	"strings"
	"testing"

	"fjacquet/ledger-audit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() []models.ClassificationRule {
	return []models.ClassificationRule{
		{Pattern: "coffee|cafe", Account: "Expenses:Coffee", Priority: 10, Origin: models.OriginUser},
		{Pattern: "^migros", Account: "Expenses:Groceries", Priority: 20, Origin: models.OriginLearned},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ExportRules(exportFixture(), format, &buf))

			imported, err := ImportRules(format, &buf)
			require.NoError(t, err)
			require.Len(t, imported, 2)

			// Pattern, account, and priority survive every format.
			assert.Equal(t, "coffee|cafe", imported[0].Pattern)
			assert.Equal(t, "Expenses:Coffee", imported[0].Account)
			assert.Equal(t, 10, imported[0].Priority)
			assert.Equal(t, "^migros", imported[1].Pattern)
			assert.Equal(t, 20, imported[1].Priority)
		})
	}
}

func TestExportCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportRules(exportFixture(), FormatCSV, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "pattern")
	assert.Contains(t, lines[0], "account")
	assert.Contains(t, lines[0], "priority")
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ExportRules(exportFixture(), "xml", &buf))

	_, err := ImportRules("xml", strings.NewReader(""))
	assert.Error(t, err)
}

func TestFormatFromExtension(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromExtension("rules.csv"))
	assert.Equal(t, FormatJSON, FormatFromExtension("rules.json"))
	assert.Equal(t, FormatYAML, FormatFromExtension("rules.yaml"))
	assert.Equal(t, FormatYAML, FormatFromExtension("rules.yml"))
	assert.Equal(t, FormatYAML, FormatFromExtension("rules"))
}
