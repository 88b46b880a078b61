package normalize

import "testing"

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"Simple merchant", "STARBUCKS #1234", "starbucks"},
		{"Dotted domain", "NETFLIX.COM", "netflix"},
		{"Digit run stripped", "UBER TRIP 4567", "uber"},
		{"Company suffix stripped", "TARGET CORP", "target"},
		{"Whitespace only", "   ", ""},
		{"Symbols only", "###", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.description); got != tt.want {
				t.Errorf("CacheKey(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"Two words", "WHOLE FOODS MARKET #123", "whole foods"},
		{"Single word", "NETFLIX.COM", "netflix com"},
		{"Star suffix stripped", "AMAZON.COM*AB12XY", "amazon com"},
		{"Same merchant varying order id", "STARBUCKS #1234", "starbucks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupKey(tt.description); got != tt.want {
				t.Errorf("GroupKey(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestGroupKey_StableAcrossVariants(t *testing.T) {
	variants := []string{
		"NETFLIX.COM",
		"NETFLIX.COM 866-579-7172",
		"Netflix.com",
	}

	want := GroupKey(variants[0])
	for _, v := range variants[1:] {
		if got := GroupKey(v); got != want {
			t.Errorf("GroupKey(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestRuleKey(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"No context words", "WHOLE FOODS MARKET", "whole foods"},
		{"Payment context kept", "CAPITAL ONE PAYMENT", "capital one payment"},
		{"Fee context kept", "CAPITAL ONE FEE", "capital one fee"},
		{"Membership context", "AMAZON PRIME MEMBERSHIP", "amazon prime membership"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RuleKey(tt.description); got != tt.want {
				t.Errorf("RuleKey(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestRuleKey_ContextKeepsRulesDistinct(t *testing.T) {
	payment := RuleKey("CAPITAL ONE PAYMENT")
	fee := RuleKey("CAPITAL ONE FEE")

	if payment == fee {
		t.Errorf("Expected distinct rule keys, both are %q", payment)
	}

	// The coarse group key collapses the same pair.
	if GroupKey("CAPITAL ONE PAYMENT") != GroupKey("CAPITAL ONE FEE") {
		t.Errorf("Expected matching group keys for the same merchant")
	}
}

func TestKeys_Idempotent(t *testing.T) {
	descriptions := []string{
		"STARBUCKS #1234",
		"NETFLIX.COM",
		"CAPITAL ONE PAYMENT",
		"WHOLE FOODS MARKET #123",
	}

	for _, d := range descriptions {
		if k := CacheKey(d); CacheKey(k) != k {
			t.Errorf("CacheKey not idempotent for %q: %q -> %q", d, k, CacheKey(k))
		}
		if k := GroupKey(d); GroupKey(k) != k {
			t.Errorf("GroupKey not idempotent for %q: %q -> %q", d, k, GroupKey(k))
		}
		if k := RuleKey(d); RuleKey(k) != k {
			t.Errorf("RuleKey not idempotent for %q: %q -> %q", d, k, RuleKey(k))
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"Two words title cased", "whole foods market", "Whole Foods"},
		{"Domain", "NETFLIX.COM", "Netflix Com"},
		{"Unkeyable falls back to trimmed input", " ### ", "###"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.description); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}
