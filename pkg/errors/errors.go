// Package errors provides structured error handling for Cardflow.
// It implements errors with codes, context, and stack traces so callers can
// tell "the filter evaluated false" apart from "the filter could not be
// evaluated".
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Input errors (1xx)
	CodeFileNotFound  Code = "E101"
	CodeFileTooLarge  Code = "E102"
	CodeInvalidFormat Code = "E103"

	// Card processing errors (2xx)
	CodeMissingField     Code = "E201"
	CodeInvalidOperator  Code = "E202"
	CodeInvalidValueType Code = "E203"
	CodeProcessFailed    Code = "E204"

	// Stream/write errors (3xx)
	CodeStreamParse Code = "E301"
	CodeMetadata    Code = "E302"
	CodeWriterState Code = "E303"
	CodeWriteFailed Code = "E304"

	// Batch errors (4xx)
	CodeBatchFailed Code = "E401"
	CodeTimeout     Code = "E402"

	// Deck errors (5xx)
	CodeDeckFormat Code = "E501"
	CodeEmptyDeck  Code = "E502"

	// Config errors (6xx)
	CodeConfigVersion Code = "E601"
	CodeConfigInvalid Code = "E602"

	// Unknown
	CodeUnknown Code = "E999"
)

// CardflowError is the base error type for all Cardflow errors.
type CardflowError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *CardflowError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *CardflowError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error by code.
func (e *CardflowError) Is(target error) bool {
	if t, ok := target.(*CardflowError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *CardflowError) WithContext(key string, value interface{}) *CardflowError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new CardflowError.
func New(code Code, message string) *CardflowError {
	return &CardflowError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Newf creates a new CardflowError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *CardflowError {
	return &CardflowError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *CardflowError {
	if err == nil {
		return nil
	}

	return &CardflowError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *CardflowError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *CardflowError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// FileNotFound creates a file not found error.
func FileNotFound(path string) *CardflowError {
	return New(CodeFileNotFound, "file not found").WithContext("path", path)
}

// MissingFields creates a required-field validation error.
func MissingFields(cardName string, fields []string) *CardflowError {
	return New(CodeMissingField, "card missing required fields").
		WithContext("card", cardName).
		WithContext("fields", fields)
}

// InvalidOperator creates an unknown-operator error.
func InvalidOperator(op string) *CardflowError {
	return New(CodeInvalidOperator, "invalid operator").WithContext("operator", op)
}

// InvalidValueType creates a numeric coercion error.
func InvalidValueType(op string, value interface{}) *CardflowError {
	return New(CodeInvalidValueType, "invalid value type for numeric operator").
		WithContext("operator", op).
		WithContext("value", value)
}

// StreamError creates a stream processing error tagged with the offending path.
func StreamError(path string, err error) *CardflowError {
	return Wrap(err, CodeStreamParse, "stream processing failed").
		WithContext("path", path)
}

// WriterStateError creates a writer precondition violation error.
func WriterStateError(expected, got string) *CardflowError {
	return New(CodeWriterState, "invalid writer state").
		WithContext("expected", expected).
		WithContext("got", got)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var cfErr *CardflowError
	if errors.As(err, &cfErr) {
		return cfErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var cfErr *CardflowError
	if errors.As(err, &cfErr) {
		return cfErr.Code
	}
	return CodeUnknown
}
