package store

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `rules:
  - pattern: "coffee|cafe"
    account: "Expenses:Coffee"
    priority: 10
  - pattern: "^migros"
    account: "Expenses:Groceries"
    priority: 20
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, rulesYAML)

	s := NewRuleStore(path, "", &logging.MockLogger{})
	rules, err := s.LoadRules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "coffee|cafe", rules[0].Pattern)
	assert.Equal(t, "Expenses:Coffee", rules[0].Account)
	assert.Equal(t, 10, rules[0].Priority)
	assert.Equal(t, models.OriginUser, rules[0].Origin)
}

func TestLoadRulesDirectArray(t *testing.T) {
	path := writeRules(t, `- pattern: "rent"
  account: "Expenses:Rent"
  priority: 5
`)

	s := NewRuleStore(path, "", &logging.MockLogger{})
	rules, err := s.LoadRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Expenses:Rent", rules[0].Account)
}

func TestLoadRulesEmptyList(t *testing.T) {
	path := writeRules(t, "rules: []\n")

	s := NewRuleStore(path, "", &logging.MockLogger{})
	rules, err := s.LoadRules()
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadRulesMissingFile(t *testing.T) {
	s := NewRuleStore(filepath.Join(t.TempDir(), "absent.yaml"), "", &logging.MockLogger{})

	// A missing rule file is not fatal: overrides and the AI fallback
	// still work.
	rules, err := s.LoadRules()
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadRulesMalformed(t *testing.T) {
	path := writeRules(t, "rules: [}")

	s := NewRuleStore(path, "", &logging.MockLogger{})
	_, err := s.LoadRules()
	assert.Error(t, err)
}

func TestSaveAndReloadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	s := NewRuleStore(path, "", &logging.MockLogger{})

	in := []models.ClassificationRule{
		{Pattern: "coffee", Account: "Expenses:Coffee", Priority: 10, Origin: models.OriginUser},
	}
	require.NoError(t, s.SaveRules(in))

	out, err := s.LoadRules()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMergeRules(t *testing.T) {
	path := writeRules(t, rulesYAML)
	s := NewRuleStore(path, "", &logging.MockLogger{})

	total, err := s.MergeRules([]models.ClassificationRule{
		{Pattern: "coffee|cafe", Account: "Expenses:Coffee", Priority: 10}, // already present
		{Pattern: "sbb", Account: "Expenses:Transport", Priority: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	rules, err := s.LoadRules()
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "Expenses:Transport", rules[2].Account)
}

func TestMergeRulesRejectsInvalid(t *testing.T) {
	path := writeRules(t, rulesYAML)
	s := NewRuleStore(path, "", &logging.MockLogger{})

	_, err := s.MergeRules([]models.ClassificationRule{
		{Pattern: "[bad", Account: "Expenses:Broken"},
	})
	assert.Error(t, err)

	_, err = s.MergeRules([]models.ClassificationRule{
		{Pattern: "", Account: "Expenses:Empty"},
	})
	assert.Error(t, err)
}

func TestLoadChartOfAccounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`accounts:
  - Assets:Checking
  - Expenses:Coffee
`), 0600))

	s := NewRuleStore("", path, &logging.MockLogger{})
	chart, err := s.LoadChartOfAccounts()
	require.NoError(t, err)
	assert.True(t, chart["Assets:Checking"])
	assert.True(t, chart["Expenses:Coffee"])
	assert.False(t, chart["Expenses:Other"])
}

func TestLoadChartOfAccountsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: []\n"), 0600))

	s := NewRuleStore("", path, &logging.MockLogger{})
	chart, err := s.LoadChartOfAccounts()
	require.NoError(t, err)
	assert.Empty(t, chart)
}

func TestLoadChartOfAccountsUnconfigured(t *testing.T) {
	s := NewRuleStore("", "", &logging.MockLogger{})
	chart, err := s.LoadChartOfAccounts()
	require.NoError(t, err)
	assert.Nil(t, chart)
}
