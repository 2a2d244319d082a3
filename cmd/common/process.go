// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"time"

	"fjacquet/ledger-audit/internal/classifier"
	"fjacquet/ledger-audit/internal/config"
	"fjacquet/ledger-audit/internal/engine"
	"fjacquet/ledger-audit/internal/ledgerparser"
	"fjacquet/ledger-audit/internal/logging"
	"fjacquet/ledger-audit/internal/store"
)

// ParserOptions derives parser options from the resolved configuration.
func ParserOptions(cfg *config.Config) ledgerparser.Options {
	opts := ledgerparser.DefaultOptions()
	if cfg.Ledger.DecimalMark != "" {
		opts.DecimalMark = []rune(cfg.Ledger.DecimalMark)[0]
	}
	if cfg.Ledger.ThousandsSeparator != "" {
		opts.ThousandsSeparator = []rune(cfg.Ledger.ThousandsSeparator)[0]
	}
	if cfg.Ledger.DefaultCommodity != "" {
		opts.DefaultCommodity = cfg.Ledger.DefaultCommodity
	}
	return opts
}

// BuildClassifier assembles the full classification chain from
// configuration: rule set, override snapshot, and the optional AI
// fallback with auto-learn. The returned cleanup closes the override
// store and the AI client and must be deferred by the caller.
func BuildClassifier(ctx context.Context, cfg *config.Config, log logging.Logger) (*classifier.Classifier, func(), error) {
	ruleStore := store.NewRuleStore(cfg.Rules.File, cfg.Rules.AccountsFile, log)
	records, err := ruleStore.LoadRules()
	if err != nil {
		return nil, nil, err
	}
	rules, err := classifier.NewRuleSet(records)
	if err != nil {
		return nil, nil, err
	}

	overrideStore, err := store.OpenOverrideStore(cfg.Rules.OverridesDB, log)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := overrideStore.Snapshot()
	if err != nil {
		overrideStore.Close()
		return nil, nil, err
	}

	opts := []classifier.Option{
		classifier.WithAITimeout(time.Duration(cfg.AI.TimeoutSeconds) * time.Second),
		classifier.WithMaxRetries(cfg.AI.MaxRetries),
	}
	if cfg.Classification.AutoLearn {
		opts = append(opts, classifier.WithAutoLearn(overrideStore))
	}

	var aiClient *classifier.GeminiClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		aiClient, err = classifier.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, log)
		if err != nil {
			log.WithError(err).Warn("AI fallback unavailable, continuing without it")
		} else {
			opts = append(opts, classifier.WithAIClient(aiClient))
		}
	}

	cleanup := func() {
		if aiClient != nil {
			_ = aiClient.Close()
		}
		_ = overrideStore.Close()
	}

	return classifier.New(rules, overrides, log, opts...), cleanup, nil
}

// BuildEngine assembles an Engine for the classify command. A nil
// classifier (check mode) is assembled by the caller via engine.New.
func BuildEngine(ctx context.Context, cfg *config.Config, log logging.Logger, dryRun bool) (*engine.Engine, func(), error) {
	c, cleanup, err := BuildClassifier(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	ruleStore := store.NewRuleStore(cfg.Rules.File, cfg.Rules.AccountsFile, log)
	chart, err := ruleStore.LoadChartOfAccounts()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	eng := engine.New(c, log, engine.Options{
		ParserOptions: ParserOptions(cfg),
		DryRun:        dryRun,
		BackupDir:     cfg.Write.BackupDir,
		Workers:       cfg.Workers,
		Chart:         chart,
	})
	return eng, cleanup, nil
}
