package config

import (
	"path/filepath"
	"testing"

	"spendlens/internal/reporter"
)

func TestBuildClassifier(t *testing.T) {
	if c := BuildClassifier("", "", false); c != nil {
		t.Errorf("Expected nil classifier without an API key")
	}
	if c := BuildClassifier("sk-test", "", true); c != nil {
		t.Errorf("Expected nil classifier when AI is disabled")
	}
	if c := BuildClassifier("sk-test", "", false); c == nil {
		t.Errorf("Expected a classifier with an API key")
	}
}

func TestBuildRuleManager(t *testing.T) {
	manager, closer, err := BuildRuleManager("")
	if err != nil {
		t.Fatalf("BuildRuleManager failed: %v", err)
	}
	if manager == nil {
		t.Fatalf("Expected a manager for the in-memory store")
	}
	if closer != nil {
		t.Errorf("Expected no closer for the in-memory store")
	}

	path := filepath.Join(t.TempDir(), "rules.db")
	manager, closer, err = BuildRuleManager(path)
	if err != nil {
		t.Fatalf("BuildRuleManager failed for bolt path: %v", err)
	}
	if manager == nil || closer == nil {
		t.Fatalf("Expected manager and closer for the persistent store")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestBuildReportConfig(t *testing.T) {
	config, err := BuildReportConfig("csv", true)
	if err != nil {
		t.Fatalf("BuildReportConfig failed: %v", err)
	}
	if config.Format != reporter.FormatCSV {
		t.Errorf("Expected csv format, got %s", config.Format)
	}
	if !config.IncludeRecurringSummary {
		t.Errorf("Expected recurring summary to be included")
	}

	if _, err := BuildReportConfig("xml", false); err == nil {
		t.Errorf("Expected error for unsupported format")
	}
}
