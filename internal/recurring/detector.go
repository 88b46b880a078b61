// Package recurring detects subscription and recurring-bill patterns in a
// batch of categorized transactions. Detection is stateless: every call
// groups by normalized merchant, infers charge frequency from date deltas,
// scores confidence and predicts the next charge date from scratch.
package recurring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
	"spendlens/internal/normalize"
	"spendlens/pkg/logger"
)

const (
	// minAnalyze is the floor for attempting pattern analysis on a merchant
	// group; minAccept is the stricter floor for surfacing a pattern to
	// users. Two charges are never enough evidence of a subscription.
	minAnalyze = 2
	minAccept  = 3

	// amountTolerance is the fraction of the mean within which all amounts
	// must fall to count as consistent
	amountTolerance = 0.10

	// confidenceFloor: patterns must score strictly above this to be retained
	confidenceFloor = 0.6

	// hiddenThreshold flags small monthly charges users tend to forget about
	hiddenThreshold = 20
)

// subscriptionKeywords boost confidence when the normalized merchant matches
// a known subscription or recurring-bill vendor
var subscriptionKeywords = []string{
	"netflix", "spotify", "hulu", "disney", "apple", "amazon prime",
	"youtube", "gym", "fitness", "planet", "crunch", "insurance", "phone",
	"internet", "cable", "electricity", "gas", "water", "rent", "mortgage",
	"subscription", "membership", "adobe",
}

// Detect analyzes categorized transactions for recurring charge patterns.
// Empty input produces an all-zero analysis, never an error.
func Detect(transactions []*models.CategorizedTransaction) *models.RecurringAnalysis {
	log := logger.GetGlobalLogger().WithComponent("recurring")

	if len(transactions) == 0 {
		return models.EmptyRecurringAnalysis()
	}

	groups := make(map[string][]*models.CategorizedTransaction)
	for _, tx := range transactions {
		key := normalize.GroupKey(tx.Description)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], tx)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var recurring []*models.RecurringTransaction
	for _, key := range keys {
		members := groups[key]
		if len(members) < minAnalyze {
			continue
		}

		pattern := analyzeGroup(key, members)
		if pattern == nil {
			continue
		}
		if pattern.Occurrences < minAccept {
			continue
		}
		if pattern.Confidence <= confidenceFloor {
			continue
		}

		recurring = append(recurring, pattern)
	}

	analysis := &models.RecurringAnalysis{
		Recurring: recurring,
		Groups:    groupSubscriptions(recurring),
	}
	if analysis.Recurring == nil {
		analysis.Recurring = []*models.RecurringTransaction{}
	}

	totalMonthly := decimal.Zero
	totalAnnualOnly := decimal.Zero
	hidden := 0
	three := decimal.NewFromInt(3)

	for _, r := range recurring {
		switch r.Frequency {
		case models.FrequencyMonthly:
			totalMonthly = totalMonthly.Add(r.AverageAmount)
			if r.AverageAmount.LessThan(decimal.NewFromInt(hiddenThreshold)) {
				hidden++
			}
		case models.FrequencyQuarterly:
			totalMonthly = totalMonthly.Add(r.AverageAmount.Div(three))
		case models.FrequencyAnnual:
			totalAnnualOnly = totalAnnualOnly.Add(r.AverageAmount)
		}
	}

	analysis.TotalMonthlySpend = totalMonthly.Round(2)
	analysis.TotalAnnualSpend = totalAnnualOnly.Add(totalMonthly.Mul(decimal.NewFromInt(12))).Round(2)
	analysis.HiddenCount = hidden

	log.WithFields(logger.Fields{
		"transactions":  len(transactions),
		"merchants":     len(groups),
		"recurring":     len(recurring),
		"monthly_spend": analysis.TotalMonthlySpend.String(),
	}).Info("Recurring detection complete")

	return analysis
}

// analyzeGroup decides whether one merchant's transactions form a recurring
// pattern. Returns nil when they do not.
func analyzeGroup(key string, members []*models.CategorizedTransaction) *models.RecurringTransaction {
	sorted := make([]*models.CategorizedTransaction, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	total := decimal.Zero
	for _, tx := range sorted {
		total = total.Add(tx.Amount.Abs())
	}
	mean := total.Div(decimal.NewFromInt(int64(len(sorted))))

	consistent := true
	tolerance := mean.Mul(decimal.NewFromFloat(amountTolerance))
	for _, tx := range sorted {
		if tx.Amount.Abs().Sub(mean).Abs().GreaterThan(tolerance) {
			consistent = false
			break
		}
	}

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].Date.Sub(sorted[i-1].Date).Hours() / 24
		intervals = append(intervals, days)
	}

	var meanInterval float64
	for _, d := range intervals {
		meanInterval += d
	}
	meanInterval /= float64(len(intervals))

	frequency := classifyInterval(meanInterval)
	if frequency == models.FrequencyUnknown && len(intervals) == 1 {
		// a single out-of-range gap is noise, not an unknown-period pattern
		return nil
	}

	confidence := 0.5
	if consistent {
		confidence += 0.3
	}
	if len(sorted) >= 3 {
		confidence += 0.1
	}
	if len(sorted) >= 5 {
		confidence += 0.1
	}
	if hasSubscriptionKeyword(key) {
		confidence += 0.2
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	dates := make([]time.Time, len(sorted))
	for i, tx := range sorted {
		dates[i] = tx.Date
	}

	next := dates[len(dates)-1].AddDate(0, 0, int(math.Round(meanInterval)))

	return &models.RecurringTransaction{
		Merchant:         normalize.DisplayName(sorted[0].Description),
		Frequency:        frequency,
		Occurrences:      len(sorted),
		Category:         sorted[0].Category,
		Dates:            dates,
		TotalSpent:       total.Round(2),
		AverageAmount:    mean.Round(2),
		Confidence:       confidence,
		NextExpectedDate: &next,
	}
}

func classifyInterval(days float64) models.Frequency {
	switch {
	case days >= 25 && days <= 35:
		return models.FrequencyMonthly
	case days >= 80 && days <= 100:
		return models.FrequencyQuarterly
	case days >= 350 && days <= 380:
		return models.FrequencyAnnual
	default:
		return models.FrequencyUnknown
	}
}

func hasSubscriptionKeyword(merchantKey string) bool {
	for _, keyword := range subscriptionKeywords {
		if strings.Contains(merchantKey, keyword) {
			return true
		}
	}
	return false
}
