package categorizer

import (
	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

// buildSummary fills in the per-category breakdown and aggregate totals.
// Only expenses (negative amounts) and credits already categorized as Income
// count toward the breakdown; Payment and Transfer rows are debt repayment or
// money moving between own accounts and would double count real spending.
func buildSummary(result *models.CategorizationResult) {
	summary := make(map[models.Category]*models.CategorySummary)
	totalExpenses := decimal.Zero
	totalIncome := decimal.Zero

	add := func(category models.Category, amount decimal.Decimal) {
		if category == models.CategoryPayment || category == models.CategoryTransfer {
			return
		}

		if amount.IsNegative() {
			entry := summaryEntry(summary, category)
			entry.Total = entry.Total.Add(amount.Abs())
			entry.Count++
			totalExpenses = totalExpenses.Add(amount.Abs())
			return
		}

		if category == models.CategoryIncome && amount.IsPositive() {
			entry := summaryEntry(summary, category)
			entry.Total = entry.Total.Add(amount)
			entry.Count++
			totalIncome = totalIncome.Add(amount)
		}
	}

	for _, ct := range result.Transactions {
		if ct.IsSplit && len(ct.Splits) > 0 {
			for _, split := range ct.Splits {
				add(split.Category, split.Amount)
			}
			continue
		}
		add(ct.Category, ct.Amount)
	}

	grandTotal := totalExpenses.Add(totalIncome)
	if grandTotal.IsPositive() {
		for _, entry := range summary {
			percentage, _ := entry.Total.Div(grandTotal).Mul(decimal.NewFromInt(100)).Float64()
			entry.Percentage = percentage
		}
	}

	result.Summary = summary
	result.TotalExpenses = totalExpenses
	result.TotalIncome = totalIncome
}

func summaryEntry(summary map[models.Category]*models.CategorySummary, category models.Category) *models.CategorySummary {
	entry, ok := summary[category]
	if !ok {
		entry = &models.CategorySummary{Total: decimal.Zero}
		summary[category] = entry
	}
	return entry
}
