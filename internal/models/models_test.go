package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCategory_IsValid(t *testing.T) {
	tests := []struct {
		category Category
		valid    bool
	}{
		{CategoryFoodDining, true},
		{CategoryIncome, true},
		{CategoryOther, true},
		{"Crypto", false},
		{"food & dining", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := tt.category.IsValid(); got != tt.valid {
				t.Errorf("Category.IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Category
		ok    bool
	}{
		{"Exact match", "Groceries", CategoryGroceries, true},
		{"Exact match with ampersand", "Food & Dining", CategoryFoodDining, true},
		{"Case insensitive", "groceries", CategoryGroceries, true},
		{"Case insensitive mixed", "fOOD & dining", CategoryFoodDining, true},
		{"Surrounding whitespace", "  Travel  ", CategoryTravel, true},
		{"Outside vocabulary", "Crypto", "", false},
		{"Empty", "", "", false},
		{"Whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCategory(tt.label)
			if ok != tt.ok {
				t.Errorf("ParseCategory(%q) ok = %v, want %v", tt.label, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestCategories_FixedOrder(t *testing.T) {
	categories := Categories()
	if len(categories) != 14 {
		t.Fatalf("Expected 14 categories, got %d", len(categories))
	}
	if categories[0] != CategoryFoodDining {
		t.Errorf("Expected first category %s, got %s", CategoryFoodDining, categories[0])
	}
	if categories[len(categories)-1] != CategoryOther {
		t.Errorf("Expected last category %s, got %s", CategoryOther, categories[len(categories)-1])
	}
}

func TestTransaction_Validate(t *testing.T) {
	validDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		transaction Transaction
		wantError   bool
	}{
		{
			name: "Valid transaction",
			transaction: Transaction{
				Date:        validDate,
				Description: "NETFLIX.COM",
				Amount:      decimal.NewFromFloat(-15.99),
			},
			wantError: false,
		},
		{
			name: "Zero date",
			transaction: Transaction{
				Description: "NETFLIX.COM",
				Amount:      decimal.NewFromFloat(-15.99),
			},
			wantError: true,
		},
		{
			name: "Empty description",
			transaction: Transaction{
				Date:   validDate,
				Amount: decimal.NewFromFloat(-15.99),
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transaction.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Transaction.Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestTransaction_DebitCredit(t *testing.T) {
	debit := Transaction{Amount: decimal.NewFromFloat(-42.00)}
	credit := Transaction{Amount: decimal.NewFromFloat(1250.00)}

	if !debit.IsDebit() || debit.IsCredit() {
		t.Errorf("Negative amount should be a debit")
	}
	if !credit.IsCredit() || credit.IsDebit() {
		t.Errorf("Positive amount should be a credit")
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	tx := &Transaction{
		Date:        time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		Description: "STARBUCKS #1234",
		Amount:      decimal.NewFromFloat(-5.45),
	}

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.DateString() != "2024-03-07" {
		t.Errorf("Expected date 2024-03-07, got %s", decoded.DateString())
	}
	if !decoded.Amount.Equal(tx.Amount) {
		t.Errorf("Expected amount %s, got %s", tx.Amount, decoded.Amount)
	}
	if decoded.Description != tx.Description {
		t.Errorf("Expected description %q, got %q", tx.Description, decoded.Description)
	}
}

func TestCategorizedTransaction_Validate_Splits(t *testing.T) {
	base := Transaction{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "TARGET 00012345",
		Amount:      decimal.NewFromFloat(-100.00),
	}

	tests := []struct {
		name      string
		ct        CategorizedTransaction
		wantError bool
	}{
		{
			name: "Valid without splits",
			ct: CategorizedTransaction{
				Transaction: base,
				Category:    CategoryShopping,
				Confidence:  0.95,
			},
			wantError: false,
		},
		{
			name: "Valid splits summing to amount",
			ct: CategorizedTransaction{
				Transaction: base,
				Category:    CategoryShopping,
				Confidence:  1.0,
				IsSplit:     true,
				Splits: []Split{
					{Amount: decimal.NewFromFloat(-60.00), Category: CategoryGroceries},
					{Amount: decimal.NewFromFloat(-40.00), Category: CategoryHousehold},
				},
			},
			wantError: false,
		},
		{
			name: "Splits not summing to amount",
			ct: CategorizedTransaction{
				Transaction: base,
				Category:    CategoryShopping,
				Confidence:  1.0,
				IsSplit:     true,
				Splits: []Split{
					{Amount: decimal.NewFromFloat(-60.00), Category: CategoryGroceries},
					{Amount: decimal.NewFromFloat(-30.00), Category: CategoryHousehold},
				},
			},
			wantError: true,
		},
		{
			name: "Split flag without splits",
			ct: CategorizedTransaction{
				Transaction: base,
				Category:    CategoryShopping,
				Confidence:  1.0,
				IsSplit:     true,
			},
			wantError: true,
		},
		{
			name: "Invalid category",
			ct: CategorizedTransaction{
				Transaction: base,
				Category:    "Crypto",
				Confidence:  0.5,
			},
			wantError: true,
		},
		{
			name: "Confidence out of range",
			ct: CategorizedTransaction{
				Transaction: base,
				Category:    CategoryShopping,
				Confidence:  1.5,
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ct.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("CategorizedTransaction.Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"ISO date", "2024-01-15", "2024-01-15", false},
		{"US slash date", "01/15/2024", "2024-01-15", false},
		{"US slash date no padding", "1/15/2024", "2024-01-15", false},
		{"Two digit year", "1/15/24", "2024-01-15", false},
		{"Slash year first", "2024/01/15", "2024-01-15", false},
		{"RFC3339", "2024-01-15T10:30:00Z", "2024-01-15", false},
		{"Month name", "Jan 15, 2024", "2024-01-15", false},
		{"Empty", "", "", true},
		{"Garbage", "not a date", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Format(DateLayout) != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format(DateLayout), tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"Plain negative", "-5.45", "-5.45", false},
		{"Plain positive", "1250.00", "1250", false},
		{"Parenthesized negative", "(10.00)", "-10", false},
		{"Dollar sign", "$25.50", "25.5", false},
		{"Euro sign", "€9.99", "9.99", false},
		{"Thousands separator", "1,234.56", "1234.56", false},
		{"Symbol and separator", "$1,234.56", "1234.56", false},
		{"Empty", "", "", true},
		{"Garbage", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
