package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

func sampleResult() *models.CategorizationResult {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	return &models.CategorizationResult{
		Transactions: []*models.CategorizedTransaction{
			{
				Transaction: models.Transaction{
					Date:        date,
					Description: "NETFLIX.COM",
					Amount:      decimal.NewFromFloat(-15.99),
				},
				Category:   models.CategoryEntertainment,
				Confidence: 0.95,
			},
			{
				Transaction: models.Transaction{
					Date:        date.AddDate(0, 0, 1),
					Description: "TARGET 00012345",
					Amount:      decimal.NewFromFloat(-100.00),
				},
				Category:   models.CategoryShopping,
				Confidence: 1.0,
				IsSplit:    true,
				Splits: []models.Split{
					{Amount: decimal.NewFromFloat(-60.00), Category: models.CategoryGroceries, Description: "Groceries portion"},
					{Amount: decimal.NewFromFloat(-40.00), Category: models.CategoryHousehold},
				},
			},
		},
		Summary: map[models.Category]*models.CategorySummary{
			models.CategoryEntertainment: {Total: decimal.NewFromFloat(15.99), Count: 1, Percentage: 13.8},
			models.CategoryGroceries:     {Total: decimal.NewFromFloat(60.00), Count: 1, Percentage: 51.7},
			models.CategoryHousehold:     {Total: decimal.NewFromFloat(40.00), Count: 1, Percentage: 34.5},
		},
		TotalExpenses: decimal.NewFromFloat(115.99),
		TotalIncome:   decimal.Zero,
	}
}

func sampleAnalysis() *models.RecurringAnalysis {
	next := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	netflix := &models.RecurringTransaction{
		Merchant:         "Netflix Com",
		Frequency:        models.FrequencyMonthly,
		Occurrences:      4,
		Category:         models.CategoryEntertainment,
		TotalSpent:       decimal.NewFromFloat(63.96),
		AverageAmount:    decimal.NewFromFloat(15.99),
		Confidence:       1.0,
		NextExpectedDate: &next,
	}

	return &models.RecurringAnalysis{
		Recurring: []*models.RecurringTransaction{netflix},
		Groups: []*models.SubscriptionGroup{
			{
				GroupName:     "Streaming Services",
				Subscriptions: []*models.RecurringTransaction{netflix},
				TotalMonthly:  decimal.NewFromFloat(15.99),
				TotalAnnual:   decimal.NewFromFloat(191.88),
				Count:         1,
			},
		},
		TotalMonthlySpend: decimal.NewFromFloat(15.99),
		TotalAnnualSpend:  decimal.NewFromFloat(191.88),
		HiddenCount:       1,
	}
}

func TestNewReportGenerator(t *testing.T) {
	if _, err := NewReportGenerator(&ReportConfig{Format: FormatJSON}); err != nil {
		t.Errorf("Expected valid config to succeed, got %v", err)
	}

	if _, err := NewReportGenerator(&ReportConfig{Format: "xml"}); err == nil {
		t.Errorf("Expected error for unsupported format")
	}

	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("Expected nil config to use defaults, got %v", err)
	}
	if generator.config.Format != FormatConsole {
		t.Errorf("Expected default console format, got %s", generator.config.Format)
	}
}

func TestOutputFormat_IsValid(t *testing.T) {
	for _, f := range []OutputFormat{FormatConsole, FormatJSON, FormatCSV} {
		if !f.IsValid() {
			t.Errorf("Expected %s to be valid", f)
		}
	}
	for _, f := range []OutputFormat{"", "xml", "yaml"} {
		if f.IsValid() {
			t.Errorf("Expected %s to be invalid", f)
		}
	}
}

func TestGenerateCSVReport_SplitExpansion(t *testing.T) {
	generator, err := NewReportGenerator(&ReportConfig{Format: FormatCSV})
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), nil, &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	// Header plus one plain row plus two split rows.
	if len(records) != 4 {
		t.Fatalf("Expected 4 CSV records, got %d", len(records))
	}

	if records[0][0] != "Date" || records[0][5] != "Split" {
		t.Errorf("Unexpected header: %v", records[0])
	}

	plain := records[1]
	if plain[1] != "NETFLIX.COM" || plain[5] != "No" {
		t.Errorf("Unexpected plain row: %v", plain)
	}
	if plain[4] != "95%" {
		t.Errorf("Expected confidence 95%%, got %s", plain[4])
	}

	firstSplit := records[2]
	if firstSplit[1] != "Groceries portion" {
		t.Errorf("Expected split description, got %q", firstSplit[1])
	}
	if firstSplit[2] != "-60.00" || firstSplit[3] != "Groceries" || firstSplit[5] != "Yes" {
		t.Errorf("Unexpected first split row: %v", firstSplit)
	}

	secondSplit := records[3]
	if secondSplit[1] != "TARGET 00012345" {
		t.Errorf("Split without description should fall back to parent, got %q", secondSplit[1])
	}
	if secondSplit[2] != "-40.00" || secondSplit[3] != "Household" {
		t.Errorf("Unexpected second split row: %v", secondSplit)
	}
}

func TestGenerateCSVReport_RecurringBlock(t *testing.T) {
	generator, err := NewReportGenerator(&ReportConfig{Format: FormatCSV, IncludeRecurringSummary: true})
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), sampleAnalysis(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "Recurring Subscriptions") {
		t.Errorf("Expected recurring block to lead the report, got %q", output[:40])
	}
	if !strings.Contains(output, "Netflix Com,monthly,4,15.99,2024-02-14") {
		t.Errorf("Expected subscription row in output:\n%s", output)
	}
	if !strings.Contains(output, "Total Monthly,15.99") {
		t.Errorf("Expected monthly total in output:\n%s", output)
	}
	if !strings.Contains(output, "Total Annual,191.88") {
		t.Errorf("Expected annual total in output:\n%s", output)
	}
}

func TestGenerateCSVReport_RecurringBlockSuppressed(t *testing.T) {
	generator, err := NewReportGenerator(&ReportConfig{Format: FormatCSV, IncludeRecurringSummary: false})
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), sampleAnalysis(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	if strings.Contains(buf.String(), "Recurring Subscriptions") {
		t.Errorf("Expected recurring block to be suppressed")
	}
}

func TestGenerateJSONReport(t *testing.T) {
	generator, err := NewReportGenerator(&ReportConfig{Format: FormatJSON})
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), sampleAnalysis(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if _, ok := payload["categorization"]; !ok {
		t.Errorf("Expected categorization key in JSON output")
	}
	if _, ok := payload["recurring"]; !ok {
		t.Errorf("Expected recurring key in JSON output")
	}
}

func TestGenerateJSONReport_NoAnalysis(t *testing.T) {
	generator, _ := NewReportGenerator(&ReportConfig{Format: FormatJSON})

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), nil, &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if _, ok := payload["recurring"]; ok {
		t.Errorf("Expected no recurring key without analysis")
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	generator, err := NewReportGenerator(&ReportConfig{Format: FormatConsole, IncludeRecurringSummary: true})
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleResult(), sampleAnalysis(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"CATEGORIZATION SUMMARY",
		"Total expenses: 115.99",
		"Groceries",
		"RECURRING SUBSCRIPTIONS",
		"Streaming Services (1):",
		"Netflix Com",
		"Estimated monthly: 15.99",
		"Estimated annual:  191.88",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected console output to contain %q:\n%s", want, output)
		}
	}
}
