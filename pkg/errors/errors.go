package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryClassification ErrorCategory = "classification"
	CategoryStorage        ErrorCategory = "storage"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeEmptyInput     ErrorCode = "empty_input"

	// Parse errors
	CodeInvalidFormat  ErrorCode = "invalid_format"
	CodeMissingColumn  ErrorCode = "missing_column"
	CodeInvalidData    ErrorCode = "invalid_data"
	CodeNoTransactions ErrorCode = "no_transactions"

	// Validation errors
	CodeInvalidAmount   ErrorCode = "invalid_amount"
	CodeInvalidDate     ErrorCode = "invalid_date"
	CodeMissingField    ErrorCode = "missing_field"
	CodeInvalidCategory ErrorCode = "invalid_category"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Classification errors
	CodeClassifierUnavailable ErrorCode = "classifier_unavailable"
	CodeInvalidResponse       ErrorCode = "invalid_response"
	CodeResponseMismatch      ErrorCode = "response_mismatch"

	// Storage errors
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeVersionMismatch  ErrorCode = "version_mismatch"
	CodeMalformedPayload ErrorCode = "malformed_payload"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// PipelineError is the base error type for all application errors
type PipelineError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *PipelineError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryClassification, CategoryInternal:
		return 5
	case CategoryStorage:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *PipelineError) WithContext(key string, value interface{}) *PipelineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *PipelineError) WithSuggestion(suggestion string) *PipelineError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PipelineError
func New(category ErrorCategory, code ErrorCode, message string) *PipelineError {
	return &PipelineError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with PipelineError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *PipelineError {
	if err == nil {
		return nil
	}

	return &PipelineError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "re-export the statement from your bank and try again"
	case CodeEmptyInput:
		message = "Input is empty"
		suggestion = "provide a statement export with at least one transaction row"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, line int, field string, value string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format at row %d, field '%s': '%s'", line, field, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s'", field)
		suggestion = "verify the export has date, description and amount columns"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data at row %d, field '%s': '%s'", line, field, value)
		suggestion = "correct the data format or remove the invalid entry"
	case CodeNoTransactions:
		message = "no transaction records found in input"
		suggestion = "verify the file is a bank statement export (CSV, Excel or OFX)"
	default:
		message = fmt.Sprintf("parse error at row %d", line)
		suggestion = "check the file format and data integrity"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("line", line).
		WithContext("field", field).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '-12.34' or '(12.34)')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD or MM/DD/YYYY"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidCategory:
		message = fmt.Sprintf("category in field '%s' is not in the fixed vocabulary: %v", field, value)
		suggestion = "use one of the canonical category labels"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting via flag, env or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// ClassificationError creates a classifier-related error.
// These never reach end users: the pipeline catches them and falls back to
// deterministic categorization.
func ClassificationError(code ErrorCode, detail string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeClassifierUnavailable:
		message = fmt.Sprintf("classifier call failed: %s", detail)
		suggestion = "check API key validity and network connectivity"
	case CodeInvalidResponse:
		message = fmt.Sprintf("classifier returned an unparseable response: %s", detail)
		suggestion = "the response must be a JSON array of category labels"
	case CodeResponseMismatch:
		message = fmt.Sprintf("classifier response length mismatch: %s", detail)
		suggestion = "the classifier must return one label per input transaction"
	default:
		message = fmt.Sprintf("classification error: %s", detail)
		suggestion = "heuristic fallback categorization will be applied"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryClassification, code, message)
	} else {
		result = New(CategoryClassification, code, message)
	}

	return result.WithSuggestion(suggestion).WithContext("detail", detail)
}

// StorageError creates a rule-store-related error
func StorageError(code ErrorCode, operation string, err error) *PipelineError {
	var message string
	var suggestion string

	switch code {
	case CodeStoreUnavailable:
		message = fmt.Sprintf("rule store unavailable during %s", operation)
		suggestion = "check the rules database path and permissions"
	case CodeVersionMismatch:
		message = fmt.Sprintf("stored rule schema version mismatch during %s", operation)
		suggestion = "stored rules from an incompatible schema version are discarded"
	case CodeMalformedPayload:
		message = fmt.Sprintf("malformed rule payload during %s", operation)
		suggestion = "the import payload must be a JSON array of rules"
	default:
		message = fmt.Sprintf("storage error during %s", operation)
		suggestion = "check the rule store and try again"
	}

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.WithSuggestion(suggestion).WithContext("operation", operation)
}

// InternalError creates an internal system error
func InternalError(code ErrorCode, component string, err error) *PipelineError {
	message := fmt.Sprintf("internal error in %s", component)

	var result *PipelineError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion("this indicates a bug; please report it with the input that triggered it").
		WithContext("component", component)
}

// IsPipelineError checks if an error is a PipelineError
func IsPipelineError(err error) bool {
	_, ok := err.(*PipelineError)
	return ok
}

// GetPipelineError extracts a PipelineError from an error chain
func GetPipelineError(err error) (*PipelineError, bool) {
	for err != nil {
		if pe, ok := err.(*PipelineError); ok {
			return pe, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// IsCategory checks whether the error belongs to the given category
func IsCategory(err error, category ErrorCategory) bool {
	if pe, ok := GetPipelineError(err); ok {
		return pe.Category == category
	}
	return false
}
