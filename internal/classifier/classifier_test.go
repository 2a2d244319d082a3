package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAIClient returns canned suggestions and counts calls.
type mockAIClient struct {
	suggestion Suggestion
	err        error
	calls      int
}

func (m *mockAIClient) Classify(ctx context.Context, description string, categories []string) (Suggestion, error) {
	m.calls++
	return m.suggestion, m.err
}

// mockLearner records Append calls.
type mockLearner struct {
	appended map[string]string
	err      error
}

func (m *mockLearner) Append(signature, account string) error {
	if m.err != nil {
		return m.err
	}
	if m.appended == nil {
		m.appended = map[string]string{}
	}
	m.appended[signature] = account
	return nil
}

func coffeeTransaction() *models.Transaction {
	return &models.Transaction{
		Description: "Coffee Shop",
		Postings: []*models.Posting{
			{Account: models.UnclassifiedAccount, OriginalAccount: models.UnclassifiedAccount},
			{Account: "Assets:Checking", Elided: true},
		},
	}
}

func mustRuleSet(t *testing.T, records []models.ClassificationRule) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet(records)
	require.NoError(t, err)
	return rs
}

func TestClassifyByOverride(t *testing.T) {
	rules := mustRuleSet(t, []models.ClassificationRule{
		{Pattern: "coffee", Account: "Expenses:Food", Priority: 10},
	})
	overrides := map[string]string{"coffee shop": "Expenses:Coffee"}

	c := New(rules, overrides, &logging.MockLogger{})
	result := c.Classify(context.Background(), coffeeTransaction())

	// Overrides win over a matching rule.
	assert.Equal(t, models.MethodOverride, result.Method)
	assert.Equal(t, "Expenses:Coffee", result.Account)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestClassifyByRule(t *testing.T) {
	rules := mustRuleSet(t, []models.ClassificationRule{
		{Pattern: "COFFEE", Account: "Expenses:Food", Priority: 10},
	})

	c := New(rules, nil, &logging.MockLogger{})
	result := c.Classify(context.Background(), coffeeTransaction())

	// Matching is case-insensitive.
	assert.Equal(t, models.MethodRule, result.Method)
	assert.Equal(t, "Expenses:Food", result.Account)
	assert.Equal(t, "rule-1", result.RuleID)
}

func TestClassifyRulePriorityOrder(t *testing.T) {
	rules := mustRuleSet(t, []models.ClassificationRule{
		{Pattern: "shop", Account: "Expenses:Shopping", Priority: 20},
		{Pattern: "coffee", Account: "Expenses:Coffee", Priority: 5},
	})

	c := New(rules, nil, &logging.MockLogger{})
	result := c.Classify(context.Background(), coffeeTransaction())

	// Lower priority value is evaluated first.
	assert.Equal(t, "Expenses:Coffee", result.Account)
	assert.Equal(t, "rule-2", result.RuleID)
}

func TestClassifyRuleStableTieBreak(t *testing.T) {
	rules := mustRuleSet(t, []models.ClassificationRule{
		{Pattern: "coffee", Account: "Expenses:First", Priority: 10},
		{Pattern: "coffee", Account: "Expenses:Second", Priority: 10},
	})

	c := New(rules, nil, &logging.MockLogger{})
	result := c.Classify(context.Background(), coffeeTransaction())

	// Equal priorities keep rule file order.
	assert.Equal(t, "Expenses:First", result.Account)
}

func TestClassifyAIFallback(t *testing.T) {
	rules := mustRuleSet(t, []models.ClassificationRule{
		{Pattern: "rent", Account: "Expenses:Rent", Priority: 10},
	})
	ai := &mockAIClient{suggestion: Suggestion{Account: "Expenses:Coffee", Confidence: 0.82}}

	c := New(rules, nil, &logging.MockLogger{}, WithAIClient(ai))
	result := c.Classify(context.Background(), coffeeTransaction())

	assert.Equal(t, models.MethodAIFallback, result.Method)
	assert.Equal(t, "Expenses:Coffee", result.Account)
	assert.Equal(t, 0.82, result.Confidence)
	assert.Equal(t, 1, ai.calls)
}

func TestClassifyUnresolvedWithoutAI(t *testing.T) {
	rules := mustRuleSet(t, nil)

	c := New(rules, nil, &logging.MockLogger{})
	result := c.Classify(context.Background(), coffeeTransaction())

	assert.Equal(t, models.MethodUnresolved, result.Method)
	assert.Equal(t, models.UnclassifiedAccount, result.Account)
	assert.False(t, result.Resolved())
}

func TestClassifyAIFailureDegradesToUnresolved(t *testing.T) {
	rules := mustRuleSet(t, nil)
	ai := &mockAIClient{err: errors.New("service unavailable")}
	log := &logging.MockLogger{}

	c := New(rules, nil, log, WithAIClient(ai), WithMaxRetries(2), WithAITimeout(time.Second))
	result := c.Classify(context.Background(), coffeeTransaction())

	assert.Equal(t, models.MethodUnresolved, result.Method)
	// Initial attempt plus two retries.
	assert.Equal(t, 3, ai.calls)
}

func TestClassifyAutoLearn(t *testing.T) {
	rules := mustRuleSet(t, nil)
	ai := &mockAIClient{suggestion: Suggestion{Account: "Expenses:Coffee", Confidence: 0.9}}
	learner := &mockLearner{}

	c := New(rules, nil, &logging.MockLogger{}, WithAIClient(ai), WithAutoLearn(learner))
	c.Classify(context.Background(), coffeeTransaction())

	assert.Equal(t, "Expenses:Coffee", learner.appended["coffee shop"])
}

func TestClassifyAutoLearnFailureIsNonFatal(t *testing.T) {
	rules := mustRuleSet(t, nil)
	ai := &mockAIClient{suggestion: Suggestion{Account: "Expenses:Coffee", Confidence: 0.9}}
	learner := &mockLearner{err: errors.New("db locked")}

	c := New(rules, nil, &logging.MockLogger{}, WithAIClient(ai), WithAutoLearn(learner))
	result := c.Classify(context.Background(), coffeeTransaction())

	// The classification itself still succeeds.
	assert.Equal(t, models.MethodAIFallback, result.Method)
}

func TestApplyMutatesUnclassifiedPostings(t *testing.T) {
	rules := mustRuleSet(t, []models.ClassificationRule{
		{Pattern: "coffee", Account: "Expenses:Coffee", Priority: 10},
	})
	tx := coffeeTransaction()

	c := New(rules, nil, &logging.MockLogger{})
	result := c.Apply(context.Background(), tx)

	assert.True(t, result.Resolved())
	assert.Equal(t, "Expenses:Coffee", tx.Postings[0].Account)
	assert.Equal(t, models.UnclassifiedAccount, tx.Postings[0].OriginalAccount)
	// The elided funding posting is untouched.
	assert.Equal(t, "Assets:Checking", tx.Postings[1].Account)
}

func TestApplyLeavesUnresolvedUntouched(t *testing.T) {
	rules := mustRuleSet(t, nil)
	tx := coffeeTransaction()

	c := New(rules, nil, &logging.MockLogger{})
	result := c.Apply(context.Background(), tx)

	assert.False(t, result.Resolved())
	assert.Equal(t, models.UnclassifiedAccount, tx.Postings[0].Account)
}
