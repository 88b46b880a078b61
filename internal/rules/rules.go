// Package rules implements user-taught merchant-to-category overrides. A rule
// is created the first time a user corrects the category for a merchant
// pattern and from then on wins over every other categorization stage with
// confidence 1.0.
package rules

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendlens/internal/models"
	"spendlens/internal/normalize"
	apperrors "spendlens/pkg/errors"
	"spendlens/pkg/logger"
)

// Manager owns the learned-rule set. Rules are keyed by the
// context-preserving normalized merchant pattern and persisted through the
// injected Store after every mutation.
type Manager struct {
	mu     sync.Mutex
	store  Store
	byKey  map[string]*models.CategoryRule
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// NewManager creates a Manager backed by the given store. A stored envelope
// whose schema version does not match the current version is discarded
// entirely; there is no partial migration.
func NewManager(store Store) (*Manager, error) {
	m := &Manager{
		store:  store,
		byKey:  make(map[string]*models.CategoryRule),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		logger: logger.GetGlobalLogger().WithComponent("rules"),
	}

	envelope, err := store.Load()
	if err != nil {
		return nil, err
	}

	if envelope != nil {
		if envelope.Version != models.RuleSchemaVersion {
			m.logger.WithFields(logger.Fields{
				"stored_version":  envelope.Version,
				"current_version": models.RuleSchemaVersion,
			}).Warn("Discarding learned rules with mismatched schema version")
		} else {
			for _, rule := range envelope.Rules {
				if rule != nil && rule.MerchantPattern != "" {
					m.byKey[rule.MerchantPattern] = rule
				}
			}
		}
	}

	return m, nil
}

// RuleResult reports the outcome of CreateOrUpdateRule
type RuleResult struct {
	IsNewRule bool
	Rule      *models.CategoryRule
}

// CreateOrUpdateRule teaches the manager that descriptions matching this
// merchant pattern belong to category. Repeated corrections to the same
// pattern replace the category in place.
func (m *Manager) CreateOrUpdateRule(description string, category models.Category) (*RuleResult, error) {
	if !category.IsValid() {
		return nil, apperrors.ValidationError(apperrors.CodeInvalidCategory, "category", category, nil)
	}

	key := normalize.RuleKey(description)
	if key == "" {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "description", description, nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if existing, ok := m.byKey[key]; ok {
		existing.Category = category
		existing.AppliedCount++
		existing.LastApplied = &now

		if err := m.persistLocked(); err != nil {
			return nil, err
		}

		m.logger.WithFields(logger.Fields{
			"pattern":  key,
			"category": category,
		}).Debug("Updated learned rule")

		return &RuleResult{IsNewRule: false, Rule: existing}, nil
	}

	rule := &models.CategoryRule{
		ID:              m.newID(),
		MerchantPattern: key,
		Category:        category,
		Confidence:      1.0,
		CreatedAt:       now,
		AppliedCount:    1,
	}
	m.byKey[key] = rule

	if err := m.persistLocked(); err != nil {
		return nil, err
	}

	m.logger.WithFields(logger.Fields{
		"pattern":  key,
		"category": category,
	}).Info("Learned new category rule")

	return &RuleResult{IsNewRule: true, Rule: rule}, nil
}

// Match is a successful rule application
type Match struct {
	Category models.Category
	Rule     *models.CategoryRule
}

// Apply looks up a learned rule for the description. A hit increments the
// rule's applied count and refreshes its last-applied timestamp as a side
// effect.
func (m *Manager) Apply(description string) *Match {
	key := normalize.RuleKey(description)
	if key == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rule, ok := m.byKey[key]
	if !ok {
		return nil
	}

	now := m.now()
	rule.AppliedCount++
	rule.LastApplied = &now

	if err := m.persistLocked(); err != nil {
		m.logger.WithError(err).Warn("Failed to persist rule usage counters")
	}

	return &Match{Category: rule.Category, Rule: rule}
}

// DeleteRule removes a rule by ID. It returns false if no rule has that ID.
func (m *Manager) DeleteRule(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rule := range m.byKey {
		if rule.ID == id {
			delete(m.byKey, key)
			if err := m.persistLocked(); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	return false, nil
}

// ClearAllRules removes every learned rule
func (m *Manager) ClearAllRules() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byKey = make(map[string]*models.CategoryRule)
	return m.persistLocked()
}

// Rules returns all learned rules sorted by merchant pattern
func (m *Manager) Rules() []*models.CategoryRule {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*models.CategoryRule, 0, len(m.byKey))
	for _, rule := range m.byKey {
		result = append(result, rule)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MerchantPattern < result[j].MerchantPattern
	})
	return result
}

// Count returns the number of learned rules
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}

// ExportJSON serializes all rules as a JSON array
func (m *Manager) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(m.Rules(), "", "  ")
}

// ImportResult reports what an import did
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportJSON merges a JSON array of rules into the rule set, deduplicating by
// normalized merchant pattern. Existing rules are never overwritten; those
// collisions are counted as skipped. Malformed JSON or a non-array payload
// fails fast without touching the rule set.
func (m *Manager) ImportJSON(data []byte) (*ImportResult, error) {
	var incoming []*models.CategoryRule
	if err := json.Unmarshal(data, &incoming); err != nil {
		return nil, apperrors.StorageError(apperrors.CodeMalformedPayload, "import", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := &ImportResult{}
	for _, rule := range incoming {
		if rule == nil {
			result.Skipped++
			continue
		}

		key := normalize.RuleKey(rule.MerchantPattern)
		if key == "" || !rule.Category.IsValid() {
			result.Skipped++
			continue
		}

		if _, exists := m.byKey[key]; exists {
			result.Skipped++
			continue
		}

		imported := *rule
		imported.MerchantPattern = key
		imported.Confidence = 1.0
		if imported.ID == "" {
			imported.ID = m.newID()
		}
		if imported.CreatedAt.IsZero() {
			imported.CreatedAt = m.now()
		}
		m.byKey[key] = &imported
		result.Imported++
	}

	if result.Imported > 0 {
		if err := m.persistLocked(); err != nil {
			return nil, err
		}
	}

	m.logger.WithFields(logger.Fields{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("Imported learned rules")

	return result, nil
}

// persistLocked saves the current rule set; callers must hold the mutex
func (m *Manager) persistLocked() error {
	rules := make([]*models.CategoryRule, 0, len(m.byKey))
	for _, rule := range m.byKey {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].MerchantPattern < rules[j].MerchantPattern
	})

	envelope := &models.RuleEnvelope{
		Version:   models.RuleSchemaVersion,
		Rules:     rules,
		UpdatedAt: m.now(),
	}

	if err := m.store.Save(envelope); err != nil {
		return fmt.Errorf("failed to persist rules: %w", err)
	}
	return nil
}
