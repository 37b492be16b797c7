// Package quantaerrors provides structured error handling for Quanta with
// rich context, stack traces, and error categorization.
//
// # Overview
//
// The quantaerrors package extends Go's standard error handling with:
//   - Error categorization through ErrorType
//   - Structured context with key-value details
//   - Automatic stack trace capture
//   - Error wrapping with cause preservation
//
// # Basic Usage
//
//	// Create a new error
//	err := quantaerrors.New(quantaerrors.ErrorTypeDtypeParse, "malformed dtype string")
//
//	// Add context
//	err = err.WithDetail("input", "pint[").
//	         WithDetail("expected", "pint[<unit>]")
//
//	// Wrap existing errors
//	if err := registry.Parse(text); err != nil {
//	    return quantaerrors.Wrap(err, quantaerrors.ErrorTypeHeaderParse, "header unit did not parse").
//	        WithDetail("label", label)
//	}
//
// # Error Types
//
// The unit-semantics errors (incompatible units, dtype parse, header parse,
// unsupported operation) are part of the public contract of the columnar and
// frame packages: callers are expected to branch on them with IsType. The
// remaining types categorize ambient failures (validation, data, config, file).
package quantaerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error, used for error handling
// strategies and API contracts.
type ErrorType string

const (
	// ErrorTypeIncompatibleUnits indicates an operation that requires matching
	// dimensionality received mismatched units (add/sub, comparison,
	// concatenation, casting between incompatible units).
	ErrorTypeIncompatibleUnits ErrorType = "incompatible_units"
	// ErrorTypeDtypeParse indicates a malformed pint[...] dtype string or
	// unparsable unit text inside it.
	ErrorTypeDtypeParse ErrorType = "dtype_parse"
	// ErrorTypeHeaderParse indicates a column header that matched no
	// recognized unit convention during quantify.
	ErrorTypeHeaderParse ErrorType = "header_parse"
	// ErrorTypeUnsupportedOp indicates an operator or reduction with no unit
	// semantics was invoked on unit-aware storage.
	ErrorTypeUnsupportedOp ErrorType = "unsupported_operation"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeData represents data processing errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: Categorizes the error for handling strategies
//   - Message: Human-readable error description
//   - Cause: The underlying error that caused this error
//   - Details: Key-value pairs providing additional context
//   - Stack: Call stack at the point of error creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface, returning a formatted error message
// that includes the error type, message, and cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling compatibility with errors.Is
// and errors.As for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. This method can be
// chained for adding multiple details.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, automatically
// capturing the call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If the error is already a structured Error,
// its stack trace is preserved. Returns nil if the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type, useful for branching on
// the unit-semantics error contract.
//
// Example:
//
//	if quantaerrors.IsType(err, quantaerrors.ErrorTypeIncompatibleUnits) {
//	    // the two columns cannot be added; surface to the user
//	}
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the ErrorType of a structured error, or ErrorTypeInternal
// for plain errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
