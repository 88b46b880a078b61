// Package config assembles pipeline components from CLI settings
package config

import (
	"io"

	"spendlens/internal/classify"
	"spendlens/internal/merchantcache"
	"spendlens/internal/reporter"
	"spendlens/internal/rules"
	apperrors "spendlens/pkg/errors"
)

// BuildCache creates the shared merchant cache with production TTL settings
func BuildCache() *merchantcache.Cache {
	return merchantcache.New()
}

// BuildClassifier creates the AI classifier, or nil when no API key is
// configured or AI is disabled. A nil classifier makes the pipeline rely
// entirely on the deterministic fallback, which is always valid.
func BuildClassifier(apiKey, model string, disabled bool) classify.Classifier {
	if disabled || apiKey == "" {
		return nil
	}
	return classify.NewOpenAIClassifier(apiKey, model)
}

// BuildRuleManager creates the learned-rule manager. An empty path selects an
// in-memory store for one-shot runs; otherwise rules persist in a bolt
// database at the path. The returned closer is non-nil only for persistent
// stores.
func BuildRuleManager(path string) (*rules.Manager, io.Closer, error) {
	if path == "" {
		manager, err := rules.NewManager(rules.NewMemoryStore())
		return manager, nil, err
	}

	store, err := rules.OpenBoltStore(path)
	if err != nil {
		return nil, nil, err
	}

	manager, err := rules.NewManager(store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return manager, store, nil
}

// BuildReportConfig validates and assembles reporter settings
func BuildReportConfig(format string, includeRecurring bool) (*reporter.ReportConfig, error) {
	outputFormat := reporter.OutputFormat(format)
	if !outputFormat.IsValid() {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig,
			"output-format", format, nil).
			WithSuggestion("use one of: console, json, csv")
	}

	return &reporter.ReportConfig{
		Format:                  outputFormat,
		IncludeRecurringSummary: includeRecurring,
	}, nil
}
