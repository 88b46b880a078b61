package cmd

import (
	"fmt"
	"os"
	"strings"

	"spendlens/pkg/errors"
	"spendlens/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and returns the exit code to use
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if pipelineErr, ok := errors.GetPipelineError(err); ok {
		return h.handlePipelineError(pipelineErr)
	}

	return h.handleGenericError(err)
}

// handlePipelineError handles PipelineError with detailed context
func (h *CLIErrorHandler) handlePipelineError(err *errors.PipelineError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	if help := h.getCategoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-PipelineError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory") {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if os.IsPermission(err) || strings.Contains(err.Error(), "permission denied") {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if !h.verbose {
		fmt.Fprintf(os.Stderr, "\nRun with --verbose for more detailed error information\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file`

	case errors.CategoryParse:
		return `Parse error help:
• Verify the statement export format (CSV, Excel, OFX/QFX)
• Check for proper column headers: date, description, amount
• Ensure the file uses UTF-8 encoding
• Re-export the statement from your bank if the file looks truncated`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify date formats (YYYY-MM-DD or MM/DD/YYYY)
• Ensure amounts are decimal numbers`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'spendlens analyze --help' to see all available options`

	case errors.CategoryClassification:
		return `Classification error help:
• Verify your OpenAI API key and model name
• Check network connectivity to the API
• Use --no-ai to run with deterministic categorization only`

	case errors.CategoryStorage:
		return `Storage error help:
• Check the --rules-db path is writable
• Ensure no other process has the rules database open
• Remove or rebuild the database file if it is corrupted`

	default:
		return `For more help:
• Use 'spendlens --help' for general help
• Use 'spendlens analyze --help' for command-specific help`
	}
}

// FormatRowErrors formats accumulated row-level parse errors for display
func FormatRowErrors(rowErrors []string) string {
	if len(rowErrors) == 0 {
		return ""
	}

	if len(rowErrors) == 1 {
		return fmt.Sprintf("1 row could not be parsed: %s", rowErrors[0])
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%d rows could not be parsed:", len(rowErrors)))
	for i, rowErr := range rowErrors {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, rowErr))
		if i >= 9 && len(rowErrors) > 10 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(rowErrors)-10))
			break
		}
	}

	return strings.Join(lines, "\n")
}
