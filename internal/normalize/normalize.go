// Package normalize reduces free-text transaction descriptions to stable
// merchant keys. Two strengths exist on purpose: cache and recurring-detector
// matching want coarse, high-recall keys, while learned-rule matching keeps
// enough context that "CAPITAL ONE FEE" and "CAPITAL ONE PAYMENT" stay
// distinct rules.
package normalize

import (
	"regexp"
	"strings"
)

var (
	starSuffix    = regexp.MustCompile(`\*.*$`)
	orderSuffix   = regexp.MustCompile(`#\d+`)
	digitRuns     = regexp.MustCompile(`\d{2,}`)
	companySuffix = regexp.MustCompile(`\b(inc|llc|ltd|corp|co)\b`)
	nonLetters    = regexp.MustCompile(`[^a-z\s]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// contextKeywords is the fixed vocabulary of transaction-context words that a
// rule key preserves alongside the merchant name
var contextKeywords = []string{
	"payment", "fee", "membership", "refund", "charge", "interest",
	"annual", "monthly", "subscription", "autopay", "transfer", "deposit",
	"withdrawal", "credit", "debit", "recurring", "purchase", "bill", "invoice",
}

// cleanWords lowercases and strips a description down to its merchant words:
// payment-processor star prefixes (SQ *, TST*), #NNNN order suffixes, long
// digit runs, company suffixes and punctuation all go.
func cleanWords(description string) []string {
	s := strings.ToLower(strings.TrimSpace(description))
	s = starSuffix.ReplaceAllString(s, "")
	s = orderSuffix.ReplaceAllString(s, "")
	s = digitRuns.ReplaceAllString(s, "")
	s = companySuffix.ReplaceAllString(s, "")
	s = nonLetters.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

func firstWords(description string, n int) string {
	words := cleanWords(description)
	if len(words) == 0 {
		return ""
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// CacheKey returns the coarse single-word merchant key used by the cache
func CacheKey(description string) string {
	return firstWords(description, 1)
}

// GroupKey returns the two-word merchant key used by the recurring detector
func GroupKey(description string) string {
	return firstWords(description, 2)
}

// RuleKey returns the context-preserving key used for learned rules. When the
// description contains context keywords the key is the first three merchant
// words plus the matched context words, deduplicated and capped at four
// tokens; otherwise it is the first two words.
func RuleKey(description string) string {
	words := cleanWords(description)
	if len(words) == 0 {
		return ""
	}

	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}

	var matched []string
	for _, kw := range contextKeywords {
		if present[kw] {
			matched = append(matched, kw)
		}
	}

	if len(matched) == 0 {
		if len(words) > 2 {
			words = words[:2]
		}
		return strings.Join(words, " ")
	}

	isContext := make(map[string]bool, len(matched))
	for _, kw := range matched {
		isContext[kw] = true
	}

	var key []string
	seen := make(map[string]bool)
	for _, w := range words {
		if isContext[w] || seen[w] {
			continue
		}
		key = append(key, w)
		seen[w] = true
		if len(key) == 3 {
			break
		}
	}

	for _, kw := range matched {
		if len(key) == 4 {
			break
		}
		if !seen[kw] {
			key = append(key, kw)
			seen[kw] = true
		}
	}

	return strings.Join(key, " ")
}

// DisplayName returns a human-readable merchant name for recurring results:
// the first two cleaned words, title-cased.
func DisplayName(description string) string {
	key := GroupKey(description)
	if key == "" {
		return strings.TrimSpace(description)
	}

	words := strings.Split(key, " ")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
