package classify

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "Plain array",
			content: `["Entertainment", "Groceries"]`,
			want:    []string{"Entertainment", "Groceries"},
		},
		{
			name:    "Fenced json block",
			content: "```json\n[\"Entertainment\", \"Groceries\"]\n```",
			want:    []string{"Entertainment", "Groceries"},
		},
		{
			name:    "Fenced without language",
			content: "```\n[\"Payment\"]\n```",
			want:    []string{"Payment"},
		},
		{
			name:    "Surrounding whitespace",
			content: "  [\"Other\"]  ",
			want:    []string{"Other"},
		},
		{
			name:    "Not JSON",
			content: "Entertainment, Groceries",
			wantErr: true,
		},
		{
			name:    "JSON object instead of array",
			content: `{"labels": ["Entertainment"]}`,
			wantErr: true,
		},
		{
			name:    "Array of objects",
			content: `[{"category": "Entertainment"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLabels(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLabels() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseLabels() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseLabels()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	items := []Item{
		{Description: "NETFLIX.COM", Amount: decimal.NewFromFloat(-15.99)},
		{Description: "PAYROLL DEPOSIT", Amount: decimal.NewFromFloat(2500.00)},
	}

	prompt := buildPrompt(items)

	// Every vocabulary label must appear so the model cannot invent its own.
	for _, label := range []string{"Food & Dining", "Bills & Utilities", "Income", "Other"} {
		if !strings.Contains(prompt, "- "+label) {
			t.Errorf("Expected prompt to list category %q", label)
		}
	}

	if !strings.Contains(prompt, "1. NETFLIX.COM (-15.99)") {
		t.Errorf("Expected numbered transaction line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "2. PAYROLL DEPOSIT (2500.00)") {
		t.Errorf("Expected second transaction line, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "2 category strings") {
		t.Errorf("Expected batch-size instruction, got:\n%s", prompt)
	}
}

func TestNewOpenAIClassifier_DefaultModel(t *testing.T) {
	c := NewOpenAIClassifier("test-key", "")
	if c.model == "" {
		t.Errorf("Expected a default model to be selected")
	}

	c = NewOpenAIClassifier("test-key", "gpt-4o")
	if c.model != "gpt-4o" {
		t.Errorf("Expected model override to stick, got %s", c.model)
	}
}
