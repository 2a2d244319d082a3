// Package store loads and persists the engine's external data: the rule
// file, the chart of accounts, and the learned override database.
package store

import (
	"fmt"
	"os"
	"regexp"

	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"

	"gopkg.in/yaml.v3"
)

// RuleStore loads classification rules and the chart of accounts from YAML.
type RuleStore struct {
	RulesFile    string
	AccountsFile string

	logger logging.Logger
}

// NewRuleStore creates a store over the given file paths. AccountsFile may
// be empty; the chart check is then disabled.
func NewRuleStore(rulesFile, accountsFile string, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &RuleStore{
		RulesFile:    rulesFile,
		AccountsFile: accountsFile,
		logger:       logger,
	}
}

// ruleFile is the on-disk YAML structure: a top-level "rules" key.
type ruleFile struct {
	Rules []models.ClassificationRule `yaml:"rules"`
}

// LoadRules reads the ordered rule list. A missing rule file is not an
// error: the engine still classifies via overrides and the AI fallback.
func (s *RuleStore) LoadRules() ([]models.ClassificationRule, error) {
	data, err := os.ReadFile(s.RulesFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField(logging.FieldFile, s.RulesFile).Warn("Rule file not found")
			return []models.ClassificationRule{}, nil
		}
		return nil, fmt.Errorf("error reading rule file: %w", err)
	}

	// A bare array without the top-level key is accepted too; an empty
	// "rules: []" document must load as zero rules, not an error.
	var rules []models.ClassificationRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		var wrapped ruleFile
		if err := yaml.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("error parsing rule file %s: %w", s.RulesFile, err)
		}
		rules = wrapped.Rules
	}
	s.markUserOrigin(rules)
	return rules, nil
}

func (s *RuleStore) markUserOrigin(rules []models.ClassificationRule) {
	for i := range rules {
		if rules[i].Origin == "" {
			rules[i].Origin = models.OriginUser
		}
	}
	s.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: s.RulesFile},
		logging.Field{Key: logging.FieldCount, Value: len(rules)},
	).Debug("Loaded classification rules")
}

// SaveRules writes the rule list back to the rule file in the wrapped
// YAML form.
func (s *RuleStore) SaveRules(rules []models.ClassificationRule) error {
	data, err := yaml.Marshal(ruleFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("error serializing rules: %w", err)
	}
	if err := os.WriteFile(s.RulesFile, data, 0644); err != nil {
		return fmt.Errorf("error writing rule file %s: %w", s.RulesFile, err)
	}
	return nil
}

// MergeRules validates incoming rules, appends the ones not already
// present (same pattern and account), and saves the result. Returns the
// size of the merged rule set.
func (s *RuleStore) MergeRules(incoming []models.ClassificationRule) (int, error) {
	existing, err := s.LoadRules()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.Pattern+"\x00"+r.Account] = true
	}

	for _, r := range incoming {
		if r.Pattern == "" || r.Account == "" {
			return 0, fmt.Errorf("rule must have both pattern and account: %+v", r)
		}
		if _, err := regexp.Compile("(?i)" + r.Pattern); err != nil {
			return 0, fmt.Errorf("invalid rule pattern %q: %w", r.Pattern, err)
		}
		key := r.Pattern + "\x00" + r.Account
		if seen[key] {
			continue
		}
		seen[key] = true
		if r.Origin == "" {
			r.Origin = models.OriginUser
		}
		existing = append(existing, r)
	}

	if err := s.SaveRules(existing); err != nil {
		return 0, err
	}
	return len(existing), nil
}

// accountsFile is the on-disk YAML structure of the chart of accounts.
type accountsFile struct {
	Accounts []string `yaml:"accounts"`
}

// LoadChartOfAccounts reads the set of valid account paths. Returns nil
// when no chart is configured or the file does not exist.
func (s *RuleStore) LoadChartOfAccounts() (map[string]bool, error) {
	if s.AccountsFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.AccountsFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField(logging.FieldFile, s.AccountsFile).Warn("Chart of accounts file not found")
			return nil, nil
		}
		return nil, fmt.Errorf("error reading chart of accounts: %w", err)
	}

	var accounts []string
	if err := yaml.Unmarshal(data, &accounts); err != nil {
		var wrapped accountsFile
		if err := yaml.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("error parsing chart of accounts %s: %w", s.AccountsFile, err)
		}
		accounts = wrapped.Accounts
	}
	return accountSet(accounts), nil
}

func accountSet(accounts []string) map[string]bool {
	set := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		set[account] = true
	}
	return set
}
