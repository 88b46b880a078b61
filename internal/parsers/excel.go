package parsers

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/xuri/excelize/v2"

	"spendlens/internal/models"
)

// ParseExcel reads the first sheet of a workbook, converts it to a CSV
// string and hands off to the CSV parser. The converted CSV is returned in
// RawCSV so callers can re-run or inspect it. Structurally invalid workbooks
// produce a parse-failure error, never a panic.
func ParseExcel(data []byte) *models.ParseResult {
	failure := func(msg string) *models.ParseResult {
		return &models.ParseResult{
			Transactions: []*models.Transaction{},
			Errors:       []string{msg},
			Format:       FormatExcel,
		}
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return failure("Failed to read Excel file: " + err.Error())
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return failure("No sheets found in Excel file")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return failure("Failed to read sheet '" + sheets[0] + "': " + err.Error())
	}
	if len(rows) == 0 {
		return failure("First sheet is empty")
	}

	rawCSV, err := rowsToCSV(rows)
	if err != nil {
		return failure("Failed to convert sheet to CSV: " + err.Error())
	}

	result := ParseCSV(rawCSV)
	result.Format = FormatExcel
	result.RawCSV = rawCSV
	return result
}

func rowsToCSV(rows [][]string) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()

	return buf.String(), writer.Error()
}
