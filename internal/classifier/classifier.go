// Package classifier assigns accounts to unclassified postings using, in
// order: the override store, the ordered rule set, and an AI fallback.
package classifier

import (
	"context"
	"time"

	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/models"
)

// OverrideWriter records feedback into the override store. Append-only from
// the engine's perspective.
type OverrideWriter interface {
	Append(signature, account string) error
}

// Classifier resolves accounts for transactions carrying the unclassified
// placeholder. The rule set and override snapshot are loaded once per run
// and never mutated.
type Classifier struct {
	rules     *RuleSet
	overrides map[string]string
	aiClient  AIClient
	learner   OverrideWriter
	logger    logging.Logger

	autoLearn  bool
	aiTimeout  time.Duration
	maxRetries int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAIClient sets the AI fallback client.
func WithAIClient(client AIClient) Option {
	return func(c *Classifier) { c.aiClient = client }
}

// WithAutoLearn records successful AI classifications through w so the same
// description is never asked twice.
func WithAutoLearn(w OverrideWriter) Option {
	return func(c *Classifier) {
		c.learner = w
		c.autoLearn = w != nil
	}
}

// WithAITimeout bounds each AI request.
func WithAITimeout(d time.Duration) Option {
	return func(c *Classifier) { c.aiTimeout = d }
}

// WithMaxRetries bounds retry attempts for failed AI requests.
func WithMaxRetries(n int) Option {
	return func(c *Classifier) { c.maxRetries = n }
}

// New creates a Classifier over a compiled rule set and an override snapshot.
func New(rules *RuleSet, overrides map[string]string, logger logging.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if overrides == nil {
		overrides = map[string]string{}
	}
	c := &Classifier{
		rules:      rules,
		overrides:  overrides,
		logger:     logger,
		aiTimeout:  10 * time.Second,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify resolves a single transaction's description to an account.
// The transaction is not mutated; use Apply for the full side effect.
func (c *Classifier) Classify(ctx context.Context, tx *models.Transaction) models.ClassificationResult {
	signature := models.NormalizeDescription(tx.Description)

	// 1. Override lookup.
	if account, ok := c.overrides[signature]; ok {
		c.logger.WithFields(
			logging.Field{Key: logging.FieldSignature, Value: signature},
			logging.Field{Key: logging.FieldAccount, Value: account},
		).Debug("Classified by override")
		return models.ClassificationResult{
			Account:    account,
			Confidence: 1.0,
			Method:     models.MethodOverride,
		}
	}

	// 2. Rule scan, ascending priority, stable.
	if rule, ok := c.rules.Match(tx.Description); ok {
		c.logger.WithFields(
			logging.Field{Key: logging.FieldRule, Value: rule.ID},
			logging.Field{Key: logging.FieldAccount, Value: rule.Account},
		).Debug("Classified by rule")
		return models.ClassificationResult{
			Account:    rule.Account,
			Confidence: 1.0,
			Method:     models.MethodRule,
			RuleID:     rule.ID,
		}
	}

	// 3. AI fallback.
	return c.classifyWithAI(ctx, tx, signature)
}

// Apply classifies the transaction and overwrites the account of every
// posting still carrying the placeholder. OriginalAccount keeps the value
// seen at parse time for audit.
func (c *Classifier) Apply(ctx context.Context, tx *models.Transaction) models.ClassificationResult {
	result := c.Classify(ctx, tx)
	if !result.Resolved() {
		return result
	}
	for _, posting := range tx.Postings {
		if posting.IsUnclassified() {
			posting.Account = result.Account
		}
	}
	return result
}

func (c *Classifier) classifyWithAI(ctx context.Context, tx *models.Transaction, signature string) models.ClassificationResult {
	unresolved := models.ClassificationResult{
		Account:    models.UnclassifiedAccount,
		Confidence: 0.0,
		Method:     models.MethodUnresolved,
	}

	if c.aiClient == nil {
		return unresolved
	}

	suggestion, err := c.requestWithRetries(ctx, tx.Description)
	if err != nil {
		// External service failure degrades to unresolved, never fatal.
		c.logger.WithError(err).WithField(logging.FieldSignature, signature).
			Warn("AI classification failed, leaving transaction for manual review")
		return unresolved
	}
	if suggestion.Account == "" || suggestion.Account == models.UnclassifiedAccount {
		return unresolved
	}

	if c.autoLearn {
		if err := c.learner.Append(signature, suggestion.Account); err != nil {
			c.logger.WithError(err).Warn("Failed to record learned override")
		}
	}

	c.logger.WithFields(
		logging.Field{Key: logging.FieldSignature, Value: signature},
		logging.Field{Key: logging.FieldAccount, Value: suggestion.Account},
	).Debug("Classified by AI fallback")

	return models.ClassificationResult{
		Account:    suggestion.Account,
		Confidence: suggestion.Confidence,
		Method:     models.MethodAIFallback,
	}
}

// requestWithRetries issues the AI request with a bounded timeout per
// attempt and exponential backoff between attempts.
func (c *Classifier) requestWithRetries(ctx context.Context, description string) (Suggestion, error) {
	categories := c.rules.Accounts()

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Suggestion{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.aiTimeout)
		suggestion, err := c.aiClient.Classify(reqCtx, description, categories)
		cancel()
		if err == nil {
			return suggestion, nil
		}
		lastErr = err
	}
	return Suggestion{}, lastErr
}
