// Package parsers normalizes heterogeneous bank statement exports into
// canonical transaction records.
//
// Three formats are handled:
//   - CSV and delimited plain text, with or without a header row
//   - OFX/QFX downloads (SGML or XML flavored)
//   - Excel workbooks, converted to CSV and re-parsed
//
// Rows that cannot produce a valid date and amount are dropped and reported
// as per-row error strings; they never abort the parse. Only structural
// problems (empty input, no transaction blocks, no sheets) fail the whole
// file, and those come back the same way: a populated Errors slice and zero
// transactions, so the caller decides what is fatal.
package parsers

import (
	"strings"

	"spendlens/internal/models"
	"spendlens/pkg/logger"
)

// Format tags reported in ParseResult.Format
const (
	FormatCSV   = "csv"
	FormatText  = "text"
	FormatOFX   = "ofx"
	FormatExcel = "excel"
)

// ErrEmptyInput is the exact error string reported for empty uploads
const ErrEmptyInput = "Input is empty"

// ParseStatement parses raw statement text, auto-detecting OFX versus
// CSV/delimited text.
func ParseStatement(input string) *models.ParseResult {
	log := logger.GetGlobalLogger().WithComponent("parsers")

	if strings.TrimSpace(input) == "" {
		return &models.ParseResult{
			Transactions: []*models.Transaction{},
			Errors:       []string{ErrEmptyInput},
		}
	}

	if looksLikeOFX(input) {
		result := ParseOFX(input)
		log.WithFields(logger.Fields{
			"format":       result.Format,
			"transactions": len(result.Transactions),
			"row_errors":   len(result.Errors),
		}).Info("Parsed statement")
		return result
	}

	result := ParseCSV(input)
	log.WithFields(logger.Fields{
		"format":       result.Format,
		"transactions": len(result.Transactions),
		"row_errors":   len(result.Errors),
	}).Info("Parsed statement")
	return result
}

// ParseUpload parses an uploaded file, using the filename extension and
// content sniffing to pick a parser. Binary Excel uploads are converted to
// CSV first.
func ParseUpload(filename string, data []byte) *models.ParseResult {
	if isExcelUpload(filename, data) {
		return ParseExcel(data)
	}
	return ParseStatement(string(data))
}

func isExcelUpload(filename string, data []byte) bool {
	name := strings.ToLower(filename)
	if strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm") {
		return true
	}
	// xlsx files are zip archives
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 0x03 && data[3] == 0x04
}
