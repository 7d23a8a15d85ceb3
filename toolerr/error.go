package toolerr

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error codes used across devflow for consistent error reporting.
const (
	// ErrCodeInvalidInput indicates arguments failed schema validation
	ErrCodeInvalidInput = "INVALID_INPUT"

	// ErrCodeToolNotFound indicates a request named an unregistered tool
	ErrCodeToolNotFound = "TOOL_NOT_FOUND"

	// ErrCodeDuplicateTool indicates a tool name was registered twice
	ErrCodeDuplicateTool = "DUPLICATE_TOOL"

	// ErrCodeGuardDenied indicates a call guard rejected the arguments
	ErrCodeGuardDenied = "GUARD_DENIED"

	// ErrCodeBinaryNotFound indicates a required binary is not in PATH
	ErrCodeBinaryNotFound = "BINARY_NOT_FOUND"

	// ErrCodeExecutionFailed indicates command execution or a filesystem operation failed
	ErrCodeExecutionFailed = "EXECUTION_FAILED"

	// ErrCodeInvalidRepository indicates the repository path is not a git work tree
	ErrCodeInvalidRepository = "INVALID_REPOSITORY"

	// ErrCodeConfig indicates the configuration could not be loaded or is invalid
	ErrCodeConfig = "CONFIG_ERROR"
)

// Error is a structured error type for tool operations.
// It records which tool and operation failed, a standard error code,
// and optionally wraps the underlying cause.
type Error struct {
	// Tool is the name of the tool (or component) that generated the error
	Tool string

	// Operation is the specific operation that failed
	Operation string

	// Code is a standard error code constant
	Code string

	// Message is a human-readable error message
	Message string

	// Details contains additional context as key-value pairs
	Details map[string]any

	// Cause is the underlying error that caused this error
	Cause error

	// Class categorizes the error by its nature
	Class ErrorClass `json:"class,omitempty"`

	// Hints provides recovery suggestions for this error
	Hints []RecoveryHint `json:"hints,omitempty"`
}

// New creates a new structured tool error.
//
// Example:
//
//	err := toolerr.New("compress_code", "archive", toolerr.ErrCodeExecutionFailed, "cannot create archive")
func New(tool, operation, code, message string) *Error {
	return &Error{
		Tool:      tool,
		Operation: operation,
		Code:      code,
		Message:   message,
	}
}

// WithCause adds an underlying error to this error.
// This method returns the same error instance for method chaining.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithDetails adds additional context to this error.
// This method returns the same error instance for method chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithClass sets the error classification.
func (e *Error) WithClass(class ErrorClass) *Error {
	e.Class = class
	return e
}

// WithHints adds recovery suggestions to this error.
func (e *Error) WithHints(hints ...RecoveryHint) *Error {
	e.Hints = append(e.Hints, hints...)
	return e
}

// Error implements the error interface.
// It formats the error as: "tool [operation/code]: message: cause"
//
// Examples:
//   - "webapp_deploy [run/BINARY_NOT_FOUND]: az binary not found in PATH"
//   - "registry [resolve/TOOL_NOT_FOUND]: tool \"git_reset\" not found"
func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%s [%s/%s]", e.Tool, e.Operation, e.Code))

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Tool, Operation and Code,
// or ErrToolNotFound when this error's code is TOOL_NOT_FOUND.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrToolNotFound:
		return e.Code == ErrCodeToolNotFound
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Tool == t.Tool && e.Operation == t.Operation && e.Code == t.Code
}

// ErrToolNotFound matches any *Error with code TOOL_NOT_FOUND under errors.Is.
var ErrToolNotFound = errors.New("tool not found")

// Code extracts the error code from err, or "" if err carries none.
func Code(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsValidation reports whether err is a request validation failure:
// unknown tool, schema mismatch or guard denial.
func IsValidation(err error) bool {
	switch Code(err) {
	case ErrCodeInvalidInput, ErrCodeToolNotFound, ErrCodeGuardDenied:
		return true
	}
	return false
}
