package classifier

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"fjacquet/ledger-audit/internal/models"
)

// CompiledRule pairs a rule record with its compiled pattern.
type CompiledRule struct {
	models.ClassificationRule
	// ID identifies the rule in classification results.
	ID string

	re *regexp.Regexp
}

// RuleSet is an immutable ordered list of compiled rules.
type RuleSet struct {
	rules []CompiledRule
}

// NewRuleSet compiles rule records into an ordered set. Patterns are
// compiled once at load time; any unparseable pattern is a fatal
// configuration error. Matching is case-insensitive substring search
// unless the pattern anchors itself.
func NewRuleSet(records []models.ClassificationRule) (*RuleSet, error) {
	rules := make([]CompiledRule, 0, len(records))
	for i, record := range records {
		re, err := regexp.Compile("(?i)" + record.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i+1, record.Pattern, err)
		}
		rules = append(rules, CompiledRule{
			ClassificationRule: record,
			ID:                 fmt.Sprintf("rule-%d", i+1),
			re:                 re,
		})
	}

	// Ascending priority; ties keep rule file order.
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	return &RuleSet{rules: rules}, nil
}

// Match returns the first rule whose pattern matches the description.
func (rs *RuleSet) Match(description string) (CompiledRule, bool) {
	for _, rule := range rs.rules {
		if rule.re.MatchString(description) {
			return rule, true
		}
	}
	return CompiledRule{}, false
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rules returns the compiled rules in evaluation order.
func (rs *RuleSet) Rules() []CompiledRule {
	return rs.rules
}

// Accounts returns the distinct target accounts of the set, sorted. These
// are the candidate categories offered to the AI fallback.
func (rs *RuleSet) Accounts() []string {
	seen := make(map[string]bool, len(rs.rules))
	var accounts []string
	for _, rule := range rs.rules {
		name := strings.TrimSpace(rule.Account)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		accounts = append(accounts, name)
	}
	sort.Strings(accounts)
	return accounts
}
