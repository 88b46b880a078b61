package parsers

import (
	"encoding/csv"
	"fmt"
	"strings"

	"spendlens/internal/models"
)

// columnLayout maps statement columns to their indices. A value of -1 means
// the column is absent.
type columnLayout struct {
	date     int
	desc     int
	amount   int
	category int
	txType   int
}

func positionalLayout() columnLayout {
	return columnLayout{date: 0, desc: 1, amount: 2, category: -1, txType: -1}
}

// ParseCSV parses CSV or delimited plain-text statement data. If CSV parsing
// yields zero transactions it falls back to line-by-line tab/comma splitting,
// which rescues exports with unbalanced quotes or ragged rows.
func ParseCSV(input string) *models.ParseResult {
	result := parseDelimited(input, FormatCSV, readCSVRecords)
	if len(result.Transactions) > 0 {
		return result
	}

	fallback := parseDelimited(input, FormatText, readPlainRecords)
	if len(fallback.Transactions) > 0 {
		return fallback
	}

	// Neither mode produced rows; report whichever attempt got further
	if len(result.Errors) == 0 {
		return fallback
	}
	return result
}

func readCSVRecords(input string) [][]string {
	reader := csv.NewReader(strings.NewReader(input))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil
	}
	return records
}

func readPlainRecords(input string) [][]string {
	var records [][]string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, "\t") {
			records = append(records, strings.Split(line, "\t"))
		} else {
			records = append(records, strings.Split(line, ","))
		}
	}
	return records
}

func parseDelimited(input, format string, read func(string) [][]string) *models.ParseResult {
	result := &models.ParseResult{
		Transactions: []*models.Transaction{},
		Errors:       []string{},
		Format:       format,
	}

	records := read(input)
	if len(records) == 0 {
		result.Errors = append(result.Errors, "No rows found in input")
		return result
	}

	layout := positionalLayout()
	start := 0
	if detected, ok := detectHeader(records[0]); ok {
		layout = detected
		start = 1
	}

	for i := start; i < len(records); i++ {
		rowNum := i - start + 1
		tx, err := parseRow(records[i], layout)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result
}

// detectHeader reports whether the first record is a header row: it must
// contain cells matching a date token, a description token and an amount
// token, all by case-insensitive substring.
func detectHeader(record []string) (columnLayout, bool) {
	layout := columnLayout{date: -1, desc: -1, amount: -1, category: -1, txType: -1}

	for i, cell := range record {
		cell = strings.ToLower(strings.TrimSpace(cell))
		switch {
		case layout.date == -1 && strings.Contains(cell, "date"):
			layout.date = i
		case layout.desc == -1 && (strings.Contains(cell, "description") ||
			strings.Contains(cell, "merchant") || strings.Contains(cell, "transaction")):
			layout.desc = i
		case layout.amount == -1 && (strings.Contains(cell, "amount") ||
			strings.Contains(cell, "sum") || strings.Contains(cell, "total")):
			layout.amount = i
		case layout.category == -1 && strings.Contains(cell, "category"):
			layout.category = i
		case layout.txType == -1 && strings.Contains(cell, "type"):
			layout.txType = i
		}
	}

	if layout.date == -1 || layout.desc == -1 || layout.amount == -1 {
		return columnLayout{}, false
	}
	return layout, true
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func parseRow(record []string, layout columnLayout) (*models.Transaction, error) {
	dateStr := field(record, layout.date)
	description := field(record, layout.desc)
	amountStr := field(record, layout.amount)

	if dateStr == "" || description == "" || amountStr == "" {
		return nil, fmt.Errorf("missing date, description or amount")
	}

	date, err := models.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date '%s'", dateStr)
	}

	amount, err := models.ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount '%s'", amountStr)
	}

	tx := models.NewTransaction(date, description, amount)
	tx.OriginalCategory = field(record, layout.category)
	tx.Type = field(record, layout.txType)

	return tx, nil
}
