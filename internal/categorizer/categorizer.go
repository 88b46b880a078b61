// Package categorizer orchestrates the multi-stage categorization pipeline:
// learned rules, then the merchant cache, then one batched AI classification
// call for the remaining misses, then the deterministic fallback cascade.
// Output is total: every input transaction comes back with a category from
// the fixed vocabulary, in the original order, no matter what the classifier
// does.
package categorizer

import (
	"context"

	"spendlens/internal/classify"
	"spendlens/internal/merchantcache"
	"spendlens/internal/models"
	"spendlens/internal/rules"
	"spendlens/pkg/logger"
)

// Confidence assigned to classifier output. A label that came back inside the
// vocabulary scores higher than one that had to be remapped through the
// fallback.
const (
	confidenceAIValid    = 0.95
	confidenceAIRemapped = 0.85
)

// Pipeline runs the categorization stages. Rules and classifier are optional:
// a nil rules manager skips the learned-rule stage, a nil classifier sends
// everything through the deterministic fallback.
type Pipeline struct {
	cache      *merchantcache.Cache
	rules      *rules.Manager
	classifier classify.Classifier
	logger     logger.Logger
}

// NewPipeline creates a categorization pipeline. The cache is required; it is
// shared process-wide across calls.
func NewPipeline(cache *merchantcache.Cache, ruleManager *rules.Manager, classifier classify.Classifier) *Pipeline {
	return &Pipeline{
		cache:      cache,
		rules:      ruleManager,
		classifier: classifier,
		logger:     logger.GetGlobalLogger().WithComponent("categorizer"),
	}
}

// Categorize assigns a canonical category to every transaction. The result
// preserves input order regardless of which stage resolved each item.
func (p *Pipeline) Categorize(ctx context.Context, transactions []*models.Transaction) *models.CategorizationResult {
	categorized := make([]*models.CategorizedTransaction, len(transactions))

	var uncachedIdx []int

	for i, t := range transactions {
		if p.rules != nil {
			if match := p.rules.Apply(t.Description); match != nil {
				categorized[i] = &models.CategorizedTransaction{
					Transaction: *t,
					Category:    match.Category,
					Confidence:  1.0,
				}
				continue
			}
		}

		if entry, ok := p.cache.Get(t.Description); ok {
			categorized[i] = &models.CategorizedTransaction{
				Transaction: *t,
				Category:    entry.Category,
				Confidence:  entry.Confidence,
			}
			continue
		}

		uncachedIdx = append(uncachedIdx, i)
	}

	if len(uncachedIdx) > 0 {
		p.classifyBatch(ctx, transactions, categorized, uncachedIdx)
	}

	result := &models.CategorizationResult{
		Transactions: categorized,
		CacheStats:   p.cache.Stats(),
	}
	buildSummary(result)

	p.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"cache_misses": len(uncachedIdx),
		"hit_rate":     result.CacheStats.HitRate,
	}).Info("Categorization complete")

	return result
}

// classifyBatch resolves all cache misses: one classifier call for the whole
// batch, deterministic fallback for everything if that call fails in any way.
// Fresh classifications are written back to the cache.
func (p *Pipeline) classifyBatch(ctx context.Context, transactions []*models.Transaction, categorized []*models.CategorizedTransaction, uncachedIdx []int) {
	var labels []string

	if p.classifier != nil {
		items := make([]classify.Item, len(uncachedIdx))
		for j, idx := range uncachedIdx {
			items[j] = classify.Item{
				Description: transactions[idx].Description,
				Amount:      transactions[idx].Amount,
			}
		}

		var err error
		labels, err = p.classifier.ClassifyBatch(ctx, items)
		if err != nil {
			p.logger.WithError(err).WithField("batch_size", len(items)).
				Warn("Classifier unavailable, using deterministic fallback")
			labels = nil
		}
	}

	for j, idx := range uncachedIdx {
		t := transactions[idx]

		var category models.Category
		var confidence float64

		if labels != nil {
			if valid, ok := models.ParseCategory(labels[j]); ok {
				category, confidence = valid, confidenceAIValid
			} else {
				category, _ = smartCategorize(t)
				confidence = confidenceAIRemapped
			}
		} else {
			category, confidence = smartCategorize(t)
		}

		categorized[idx] = &models.CategorizedTransaction{
			Transaction: *t,
			Category:    category,
			Confidence:  confidence,
		}

		p.cache.Put(t.Description, category, confidence)
	}
}
