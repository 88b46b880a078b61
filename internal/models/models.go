package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed canonical spending category labels.
// The vocabulary is closed: it is handed to the AI classifier as part of the
// prompt and used to validate every label the classifier returns, so the two
// must always change together.
type Category string

const (
	CategoryFoodDining     Category = "Food & Dining"
	CategoryTransportation Category = "Transportation"
	CategoryShopping       Category = "Shopping"
	CategoryBillsUtilities Category = "Bills & Utilities"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealthcare     Category = "Healthcare"
	CategoryTravel         Category = "Travel"
	CategoryGroceries      Category = "Groceries"
	CategoryHousehold      Category = "Household"
	CategoryEducation      Category = "Education"
	CategoryIncome         Category = "Income"
	CategoryPayment        Category = "Payment"
	CategoryTransfer       Category = "Transfer"
	CategoryOther          Category = "Other"
)

// Categories returns the canonical category vocabulary in its fixed order
func Categories() []Category {
	return []Category{
		CategoryFoodDining,
		CategoryTransportation,
		CategoryShopping,
		CategoryBillsUtilities,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryTravel,
		CategoryGroceries,
		CategoryHousehold,
		CategoryEducation,
		CategoryIncome,
		CategoryPayment,
		CategoryTransfer,
		CategoryOther,
	}
}

// String returns the string representation of the Category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is in the fixed vocabulary
func (c Category) IsValid() bool {
	for _, valid := range Categories() {
		if c == valid {
			return true
		}
	}
	return false
}

// ParseCategory resolves a label against the fixed vocabulary, first exactly,
// then case-insensitively. Returns false if the label is outside the vocabulary.
func ParseCategory(label string) (Category, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}

	if c := Category(label); c.IsValid() {
		return c, true
	}

	lower := strings.ToLower(label)
	for _, valid := range Categories() {
		if strings.ToLower(string(valid)) == lower {
			return valid, true
		}
	}

	return "", false
}

// Transaction is the canonical record every statement format normalizes into.
// Amount is signed: negative for debits, positive for credits.
type Transaction struct {
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	OriginalCategory string          `json:"originalCategory,omitempty"`
	Type             string          `json:"type,omitempty"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(date time.Time, description string, amount decimal.Decimal) *Transaction {
	return &Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction description cannot be empty")
	}

	return nil
}

// IsDebit returns true if the transaction amount represents a debit
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsCredit returns true if the transaction amount represents a credit
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// DateString returns the normalized YYYY-MM-DD form of the transaction date
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Description: %s, Amount: %s}",
		t.DateString(), t.Description, t.Amount.String())
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Date:   t.DateString(),
		Amount: t.Amount.String(),
		Alias:  (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	t.Date, err = ParseDate(aux.Date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	return nil
}

// Split is a portion of a transaction assigned to its own category
type Split struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
}

// CategorizedTransaction is a Transaction with an assigned canonical category.
// Confidence 1.0 is reserved for user-taught rule matches; every other stage
// assigns a strictly lower value.
type CategorizedTransaction struct {
	Transaction
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence,omitempty"`
	Splits     []Split  `json:"splits,omitempty"`
	IsSplit    bool     `json:"isSplit,omitempty"`
}

// Validate checks categorized-transaction invariants, including that split
// amounts sum to the parent amount
func (ct *CategorizedTransaction) Validate() error {
	if err := ct.Transaction.Validate(); err != nil {
		return err
	}

	if !ct.Category.IsValid() {
		return fmt.Errorf("category %q is not in the fixed vocabulary", ct.Category)
	}

	if ct.Confidence < 0 || ct.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range [0,1]", ct.Confidence)
	}

	if ct.IsSplit {
		if len(ct.Splits) == 0 {
			return fmt.Errorf("split transaction must have at least one split")
		}
		sum := decimal.Zero
		for _, s := range ct.Splits {
			if !s.Category.IsValid() {
				return fmt.Errorf("split category %q is not in the fixed vocabulary", s.Category)
			}
			sum = sum.Add(s.Amount)
		}
		if !sum.Equal(ct.Amount) {
			return fmt.Errorf("split amounts %s do not sum to transaction amount %s",
				sum.String(), ct.Amount.String())
		}
	}

	return nil
}

// RuleSchemaVersion is the current learned-rule storage schema version.
// Envelopes stored under any other version are discarded entirely on load.
const RuleSchemaVersion = 1

// CategoryRule is a user-taught merchant-pattern to category override.
// Rules always carry confidence 1.0; a rule match is exact, not probabilistic.
type CategoryRule struct {
	ID              string     `json:"id"`
	MerchantPattern string     `json:"merchantPattern"`
	Category        Category   `json:"category"`
	Confidence      float64    `json:"confidence"`
	CreatedAt       time.Time  `json:"createdAt"`
	AppliedCount    int        `json:"appliedCount"`
	LastApplied     *time.Time `json:"lastApplied,omitempty"`
}

// Validate performs basic validation on the CategoryRule
func (r *CategoryRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("rule ID cannot be empty")
	}
	if strings.TrimSpace(r.MerchantPattern) == "" {
		return fmt.Errorf("rule merchant pattern cannot be empty")
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("rule category %q is not in the fixed vocabulary", r.Category)
	}
	if r.AppliedCount < 0 {
		return fmt.Errorf("rule applied count cannot be negative")
	}
	return nil
}

// RuleEnvelope is the versioned persistence wrapper for learned rules
type RuleEnvelope struct {
	Version   int             `json:"version"`
	Rules     []*CategoryRule `json:"rules"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Frequency classifies the spacing of a recurring charge pattern
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
	FrequencyUnknown   Frequency = "unknown"
)

// String returns the string representation of the Frequency
func (f Frequency) String() string {
	return string(f)
}

// RecurringTransaction is a detected subscription or recurring bill, derived
// fresh from a batch of categorized transactions on every detection call
type RecurringTransaction struct {
	Merchant         string          `json:"merchant"`
	Frequency        Frequency       `json:"frequency"`
	Occurrences      int             `json:"occurrences"`
	Category         Category        `json:"category"`
	Dates            []time.Time     `json:"dates"`
	TotalSpent       decimal.Decimal `json:"totalSpent"`
	AverageAmount    decimal.Decimal `json:"averageAmount"`
	Confidence       float64         `json:"confidence"`
	NextExpectedDate *time.Time      `json:"nextExpectedDate,omitempty"`
}

// SubscriptionGroup is a keyword-based semantic bucket of detected subscriptions
type SubscriptionGroup struct {
	GroupName     string                  `json:"groupName"`
	Subscriptions []*RecurringTransaction `json:"subscriptions"`
	TotalMonthly  decimal.Decimal         `json:"totalMonthly"`
	TotalAnnual   decimal.Decimal         `json:"totalAnnual"`
	Count         int                     `json:"count"`
}

// RecurringAnalysis is the full result of a recurring-charge detection pass
type RecurringAnalysis struct {
	Recurring         []*RecurringTransaction `json:"recurring"`
	Groups            []*SubscriptionGroup    `json:"groups"`
	TotalMonthlySpend decimal.Decimal         `json:"totalMonthlySpend"`
	TotalAnnualSpend  decimal.Decimal         `json:"totalAnnualSpend"`
	HiddenCount       int                     `json:"hiddenCount"`
}

// EmptyRecurringAnalysis returns an all-zero analysis for empty input
func EmptyRecurringAnalysis() *RecurringAnalysis {
	return &RecurringAnalysis{
		Recurring:         []*RecurringTransaction{},
		Groups:            []*SubscriptionGroup{},
		TotalMonthlySpend: decimal.Zero,
		TotalAnnualSpend:  decimal.Zero,
	}
}

// ParseResult is the canonical output of every format parser. Row-level
// failures are collected into Errors; they never abort the overall parse.
type ParseResult struct {
	Transactions []*Transaction `json:"transactions"`
	Errors       []string       `json:"errors"`
	Format       string         `json:"format,omitempty"`
	RawCSV       string         `json:"rawCSV,omitempty"`
}

// CacheStats is a snapshot of merchant cache effectiveness
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// CategorySummary aggregates spend for a single category
type CategorySummary struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// CategorizationResult is the full output of a categorization pass
type CategorizationResult struct {
	Transactions  []*CategorizedTransaction     `json:"transactions"`
	Summary       map[Category]*CategorySummary `json:"summary"`
	TotalExpenses decimal.Decimal               `json:"totalExpenses"`
	TotalIncome   decimal.Decimal               `json:"totalIncome"`
	CacheStats    CacheStats                    `json:"cacheStats"`
}

// DateLayout is the normalized calendar date form used everywhere
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when parsing free-form statement dates
var dateLayouts = []string{
	DateLayout,            // 2024-01-15
	"01/02/2006",          // 01/15/2024
	"1/2/2006",            // 1/15/2024
	"1/2/06",              // 1/15/24
	"2006/01/02",          // 2024/01/15
	time.RFC3339,          // 2024-01-15T10:30:00Z
	"2006-01-02T15:04:05", // 2024-01-15T10:30:00
	"2006-01-02 15:04:05", // 2024-01-15 10:30:00
	"Jan 2, 2006",         // Jan 15, 2024
}

// ParseDate parses a statement date in any accepted layout. Two-digit years
// are always resolved into the 2000s.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			lastErr = err
			continue
		}
		if t.Year() < 2000 && layout == "1/2/06" {
			t = t.AddDate(100, 0, 0)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// currencySymbols are stripped before amount parsing
var currencySymbols = []string{"$", "€", "£", "¥"}

// ParseAmount parses a statement amount string into a signed decimal. It
// accepts leading minus signs, parenthesized negatives like "(123.45)",
// currency symbols and thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	for _, symbol := range currencySymbols {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format '%s': %w", s, err)
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}
