// Package reporter renders categorization and recurring-analysis results.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured output for programmatic consumption
//   - CSV: one row per transaction (split transactions expand to one row per
//     split), optionally preceded by a recurring-subscription summary block
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
	apperrors "spendlens/pkg/errors"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeRecurringSummary prepends the subscription block to CSV output
	// and appends it to console output when recurring analysis is present
	IncludeRecurringSummary bool `json:"include_recurring_summary"`
}

// DefaultReportConfig returns sensible defaults
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                  FormatConsole,
		IncludeRecurringSummary: true,
	}
}

// ReportGenerator renders results in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a generator with the given configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if !config.Format.IsValid() {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig,
			"output_format", config.Format, nil)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the categorization result, with optional recurring
// analysis, to the writer in the configured format
func (rg *ReportGenerator) GenerateReport(result *models.CategorizationResult, analysis *models.RecurringAnalysis, writer io.Writer) error {
	switch rg.config.Format {
	case FormatJSON:
		return rg.generateJSONReport(result, analysis, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, analysis, writer)
	default:
		return rg.generateConsoleReport(result, analysis, writer)
	}
}

func (rg *ReportGenerator) generateJSONReport(result *models.CategorizationResult, analysis *models.RecurringAnalysis, writer io.Writer) error {
	payload := map[string]interface{}{
		"categorization": result,
	}
	if analysis != nil {
		payload["recurring"] = analysis
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// generateCSVReport writes transaction rows of
// date, description, amount, category, confidence%, isSplit. Splits expand
// into one row per split portion.
func (rg *ReportGenerator) generateCSVReport(result *models.CategorizationResult, analysis *models.RecurringAnalysis, writer io.Writer) error {
	w := csv.NewWriter(writer)

	if analysis != nil && rg.config.IncludeRecurringSummary && len(analysis.Recurring) > 0 {
		if err := writeRecurringBlock(w, analysis); err != nil {
			return err
		}
	}

	if err := w.Write([]string{"Date", "Description", "Amount", "Category", "Confidence", "Split"}); err != nil {
		return err
	}

	for _, tx := range result.Transactions {
		if tx.IsSplit && len(tx.Splits) > 0 {
			for _, split := range tx.Splits {
				desc := tx.Description
				if split.Description != "" {
					desc = split.Description
				}
				if err := w.Write([]string{
					tx.DateString(),
					desc,
					split.Amount.StringFixed(2),
					split.Category.String(),
					confidencePercent(tx.Confidence),
					"Yes",
				}); err != nil {
					return err
				}
			}
			continue
		}

		if err := w.Write([]string{
			tx.DateString(),
			tx.Description,
			tx.Amount.StringFixed(2),
			tx.Category.String(),
			confidencePercent(tx.Confidence),
			"No",
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeRecurringBlock(w *csv.Writer, analysis *models.RecurringAnalysis) error {
	rows := [][]string{
		{"Recurring Subscriptions"},
		{"Merchant", "Frequency", "Occurrences", "Average", "Next Expected"},
	}

	for _, r := range analysis.Recurring {
		next := ""
		if r.NextExpectedDate != nil {
			next = r.NextExpectedDate.Format(models.DateLayout)
		}
		rows = append(rows, []string{
			r.Merchant,
			r.Frequency.String(),
			strconv.Itoa(r.Occurrences),
			r.AverageAmount.StringFixed(2),
			next,
		})
	}

	rows = append(rows,
		[]string{"Total Monthly", analysis.TotalMonthlySpend.StringFixed(2)},
		[]string{"Total Annual", analysis.TotalAnnualSpend.StringFixed(2)},
		[]string{},
	)

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (rg *ReportGenerator) generateConsoleReport(result *models.CategorizationResult, analysis *models.RecurringAnalysis, writer io.Writer) error {
	fmt.Fprintln(writer, "CATEGORIZATION SUMMARY")
	fmt.Fprintln(writer, "======================")
	fmt.Fprintf(writer, "Transactions:   %d\n", len(result.Transactions))
	fmt.Fprintf(writer, "Total expenses: %s\n", result.TotalExpenses.StringFixed(2))
	fmt.Fprintf(writer, "Total income:   %s\n", result.TotalIncome.StringFixed(2))
	fmt.Fprintf(writer, "Cache hit rate: %.0f%% (%d entries)\n\n",
		result.CacheStats.HitRate*100, result.CacheStats.Size)

	type row struct {
		category models.Category
		summary  *models.CategorySummary
	}
	rows := make([]row, 0, len(result.Summary))
	for category, summary := range result.Summary {
		rows = append(rows, row{category, summary})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].summary.Total.GreaterThan(rows[j].summary.Total)
	})

	fmt.Fprintln(writer, "Spending by category:")
	for _, r := range rows {
		fmt.Fprintf(writer, "  %-20s %10s  (%d, %.1f%%)\n",
			r.category, r.summary.Total.StringFixed(2), r.summary.Count, r.summary.Percentage)
	}

	if analysis != nil && rg.config.IncludeRecurringSummary {
		printRecurringConsole(writer, analysis)
	}

	return nil
}

func printRecurringConsole(writer io.Writer, analysis *models.RecurringAnalysis) {
	fmt.Fprintln(writer, "\nRECURRING SUBSCRIPTIONS")
	fmt.Fprintln(writer, "=======================")

	if len(analysis.Recurring) == 0 {
		fmt.Fprintln(writer, "No recurring charges detected.")
		return
	}

	for _, group := range analysis.Groups {
		fmt.Fprintf(writer, "%s (%d):\n", group.GroupName, group.Count)
		for _, r := range group.Subscriptions {
			next := "unknown"
			if r.NextExpectedDate != nil {
				next = r.NextExpectedDate.Format(models.DateLayout)
			}
			fmt.Fprintf(writer, "  %-24s %-10s avg %8s  next %s\n",
				r.Merchant, r.Frequency, r.AverageAmount.StringFixed(2), next)
		}
	}

	fmt.Fprintf(writer, "\nEstimated monthly: %s\n", analysis.TotalMonthlySpend.StringFixed(2))
	fmt.Fprintf(writer, "Estimated annual:  %s\n", analysis.TotalAnnualSpend.StringFixed(2))
	if analysis.HiddenCount > 0 {
		fmt.Fprintf(writer, "Small monthly charges under %s: %d\n",
			decimal.NewFromInt(20).StringFixed(2), analysis.HiddenCount)
	}
}

func confidencePercent(confidence float64) string {
	return strconv.Itoa(int(confidence*100)) + "%"
}
