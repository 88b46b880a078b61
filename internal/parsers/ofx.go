package parsers

import (
	"fmt"
	"strings"
	"time"

	"spendlens/internal/models"
)

// looksLikeOFX checks the structural markers that identify an OFX/QFX
// download before any extraction is attempted
func looksLikeOFX(input string) bool {
	upper := strings.ToUpper(input)
	return strings.Contains(upper, "<OFX>") ||
		strings.Contains(upper, "OFXHEADER:") ||
		strings.Contains(upper, "DATA:OFXSGML") ||
		strings.Contains(upper, "<STMTTRN>")
}

// ParseOFX extracts every <STMTTRN> block from an OFX/QFX statement. The
// whole file is rejected only when no blocks exist; individual blocks with an
// unparseable date or amount get a row-indexed error and are skipped.
func ParseOFX(input string) *models.ParseResult {
	result := &models.ParseResult{
		Transactions: []*models.Transaction{},
		Errors:       []string{},
		Format:       FormatOFX,
	}

	if !looksLikeOFX(input) {
		result.Errors = append(result.Errors, "Not a valid OFX file: missing OFX markers")
		return result
	}

	blocks := extractBlocks(input)
	if len(blocks) == 0 {
		result.Errors = append(result.Errors, "No transactions found in OFX file")
		return result
	}

	for i, block := range blocks {
		tx, err := parseSTMTTRN(block)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Transaction %d: %v", i+1, err))
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result
}

// extractBlocks returns the contents of every <STMTTRN>...</STMTTRN> block,
// case-insensitive
func extractBlocks(input string) []string {
	upper := strings.ToUpper(input)
	var blocks []string

	pos := 0
	for {
		start := strings.Index(upper[pos:], "<STMTTRN>")
		if start == -1 {
			break
		}
		start += pos + len("<STMTTRN>")

		end := strings.Index(upper[start:], "</STMTTRN>")
		if end == -1 {
			break
		}
		end += start

		blocks = append(blocks, input[start:end])
		pos = end + len("</STMTTRN>")
	}

	return blocks
}

// ofxField extracts the value following <TAG> inside a block. SGML-flavored
// OFX has no closing tags, so the value runs to the next '<' or end of line.
func ofxField(block, tag string) string {
	upper := strings.ToUpper(block)
	marker := "<" + strings.ToUpper(tag) + ">"

	start := strings.Index(upper, marker)
	if start == -1 {
		return ""
	}
	start += len(marker)

	value := block[start:]
	if end := strings.IndexAny(value, "<\r\n"); end != -1 {
		value = value[:end]
	}
	return strings.TrimSpace(value)
}

func parseSTMTTRN(block string) (*models.Transaction, error) {
	dateStr := ofxField(block, "DTPOSTED")
	if dateStr == "" {
		return nil, fmt.Errorf("missing DTPOSTED field")
	}

	date, err := parseOFXDate(dateStr)
	if err != nil {
		return nil, err
	}

	amountStr := ofxField(block, "TRNAMT")
	if amountStr == "" {
		return nil, fmt.Errorf("missing TRNAMT field")
	}

	amount, err := models.ParseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount '%s'", amountStr)
	}

	// NAME is the merchant; MEMO is free text and often noisier
	description := ofxField(block, "NAME")
	if description == "" {
		description = ofxField(block, "MEMO")
	}
	if description == "" {
		return nil, fmt.Errorf("missing NAME and MEMO fields")
	}

	tx := models.NewTransaction(date, description, amount)
	tx.Type = ofxField(block, "TRNTYPE")

	return tx, nil
}

// parseOFXDate handles OFX datetime strings: YYYYMMDD optionally followed by
// HHMMSS, fractional seconds and a bracketed timezone, e.g.
// "20240115120000.000[-5:EST]". Everything past the first 8 digits is
// discarded after stripping the suffixes.
func parseOFXDate(s string) (time.Time, error) {
	if i := strings.Index(s, "["); i != -1 {
		s = s[:i]
	}
	if i := strings.Index(s, "."); i != -1 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("invalid date '%s'", s)
	}
	s = s[:8]

	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("invalid date '%s'", s)
		}
	}

	year := atoi(s[0:4])
	month := atoi(s[4:6])
	day := atoi(s[6:8])

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date '%s'", s)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
