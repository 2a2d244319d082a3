package models

// RuleOrigin indicates where a classification rule came from.
type RuleOrigin string

const (
	// OriginUser is a rule defined by hand in the rule file.
	OriginUser RuleOrigin = "user"
	// OriginLearned is a rule derived from recorded feedback.
	OriginLearned RuleOrigin = "learned"
)

// ClassificationRule maps a description pattern to a target account.
// Rules are evaluated in ascending Priority order; ties are broken by
// rule file order.
type ClassificationRule struct {
	Pattern  string     `json:"pattern" yaml:"pattern" csv:"pattern"`
	Account  string     `json:"account" yaml:"account" csv:"account"`
	Priority int        `json:"priority" yaml:"priority" csv:"priority"`
	Origin   RuleOrigin `json:"origin,omitempty" yaml:"origin,omitempty" csv:"-"`
}

// Override maps a normalized description signature directly to an account.
// Overrides take precedence over all rules.
type Override struct {
	Signature string `json:"signature" yaml:"signature"`
	Account   string `json:"account" yaml:"account"`
}

// Method identifies how a classification was resolved.
type Method string

const (
	// MethodOverride means the account came from the override store.
	MethodOverride Method = "override"
	// MethodRule means an ordered rule matched the description.
	MethodRule Method = "rule"
	// MethodAIFallback means the external AI capability supplied the account.
	MethodAIFallback Method = "ai_fallback"
	// MethodUnresolved means no source could classify the transaction;
	// it is left for manual review.
	MethodUnresolved Method = "unresolved"
)

// ClassificationResult is the per-transaction outcome of classification.
type ClassificationResult struct {
	Account    string  `json:"account" yaml:"account"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Method     Method  `json:"method" yaml:"method"`
	RuleID     string  `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
}

// Resolved returns true if the result carries a usable account.
func (r ClassificationResult) Resolved() bool {
	switch r.Method {
	case MethodOverride, MethodRule, MethodAIFallback:
		return true
	case MethodUnresolved:
		return false
	}
	return false
}
