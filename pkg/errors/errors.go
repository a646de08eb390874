// Package errors provides the unified error type and factory functions used
// across the search engine.  Every layer (kernel boundary, index manager,
// writer pipeline, query/search orchestrator, HTTP and CLI surfaces) uses
// AppError as the single carrier for structured error information, enabling
// consistent HTTP responses, logging, and metrics.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stack capture
//
// Stack traces are captured on every New/Wrap call and by every factory
// function below.  No build tag or setting turns the capture off.
// ─────────────────────────────────────────────────────────────────────────────

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical platform error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the search
// engine.  It satisfies the standard error interface and supports Go 1.13+
// error wrapping so that errors.Is / errors.As / errors.Unwrap work
// transparently across all layers.
//
// Usage:
//
//	return errors.New(errors.CodeIndexNotFound, "index \"public-compounds\" not found")
//	return errors.Wrap(openErr, errors.CodeStorage, "failed to open segment directory")
//	return errors.IndexNotFound("public-compounds").WithDetail("catalog lookup failed")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (query parameters, entity IDs, etc.)
	// that aids debugging without leaking sensitive internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error

	// Stack contains the formatted call-stack captured at the point of error
	// creation.  It is populated by New, Wrap and the factory functions.
	// Stack is intentionally not included in Error() output
	// to keep API error messages clean; callers that need it can inspect the
	// field directly (e.g., structured logger middleware).
	Stack string
}

// ─────────────────────────────────────────────────────────────────────────────
// error interface implementation
// ─────────────────────────────────────────────────────────────────────────────

// Error implements the standard error interface.
// Format: "[<code_name>(<code_int>)] <message>: <detail>"
// The detail segment is omitted when Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s(%d)] %s: %s", e.Code.String(), int(e.Code), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s(%d)] %s", e.Code.String(), int(e.Code), e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without any additional boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  It is safe to call on a nil pointer (returns nil).
// Example:
//
//	return errors.IndexNotFound(name).WithDetail("catalog lookup failed")
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
// Use this when you want to attach a lower-level error to an already-constructed
// AppError without going through Wrap.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
// A call-stack snapshot is captured automatically.
//
// New is the preferred factory for errors that originate in the current layer
// without an underlying cause from a lower layer.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(repo.FindByID(ctx, id), errors.CodeStorage, "query failed")
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved, preventing loss of the original domain classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	// Preserve original code when the caller is just adding context.
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// Is re-exports the standard library's errors.Is so call sites that only
// import this package can still test sentinel errors through wrapped chains.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrapf is Wrap with a printf-formatted message, for call sites that need to
// interpolate context (a field name, a status code) into the message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check domain-specific failure modes:
//
//	if errors.IsCode(err, errors.CodeIndexNotFound) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain is an *AppError with
// CodeIndexNotFound or CodeSchemaUnknown.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case CodeIndexNotFound, CodeSchemaUnknown:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// A nil err yields CodeOK; if no *AppError is present, CodeUnknown is returned.
//
// This is useful in middleware / logging layers that need a single code to emit
// as a metric label without coupling to specific domain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions for the most common error conditions
// ─────────────────────────────────────────────────────────────────────────────
// Each function mirrors the pattern used in well-known Go HTTP frameworks so
// that call sites read naturally:
//
//   return errors.IndexNotFound("public-compounds")
//   return errors.ValidationFailed("SMILES must not be empty")

// ParseError constructs a CodeParseError AppError, used when a SMILES string
// or mol block cannot be parsed by the kernel.
func ParseError(message string) *AppError {
	return &AppError{Code: CodeParseError, Message: message, Stack: captureStack(1)}
}

// ValidationFailed constructs a CodeValidationFailed AppError.
func ValidationFailed(message string) *AppError {
	return &AppError{Code: CodeValidationFailed, Message: message, Stack: captureStack(1)}
}

// StandardizationFailed constructs a CodeStandardizationFailed AppError,
// used when fragment/uncharge/tautomer canonicalization cannot complete.
func StandardizationFailed(message string) *AppError {
	return &AppError{Code: CodeStandardizationFailed, Message: message, Stack: captureStack(1)}
}

// SchemaUnknown constructs a CodeSchemaUnknown AppError.
func SchemaUnknown(name string) *AppError {
	return &AppError{Code: CodeSchemaUnknown, Message: "unknown schema: " + name, Stack: captureStack(1)}
}

// IndexNotFound constructs a CodeIndexNotFound AppError.
func IndexNotFound(name string) *AppError {
	return &AppError{Code: CodeIndexNotFound, Message: "index not found: " + name, Stack: captureStack(1)}
}

// IndexAlreadyExists constructs a CodeIndexAlreadyExists AppError.
func IndexAlreadyExists(name string) *AppError {
	return &AppError{Code: CodeIndexAlreadyExists, Message: "index already exists: " + name, Stack: captureStack(1)}
}

// QueryParse constructs a CodeQueryParse AppError, used when the backend
// query engine rejects a generated query string.
func QueryParse(message string) *AppError {
	return &AppError{Code: CodeQueryParse, Message: message, Stack: captureStack(1)}
}

// Storage constructs a CodeStorage AppError.
// Use this for unexpected backing-store failures where no more specific code
// applies. Always log the underlying cause before or after calling Storage.
func Storage(message string) *AppError {
	return &AppError{Code: CodeStorage, Message: message, Stack: captureStack(1)}
}

// Segment constructs a CodeSegment AppError, used for segment merge/open
// failures in the index engine.
func Segment(message string) *AppError {
	return &AppError{Code: CodeSegment, Message: message, Stack: captureStack(1)}
}

// Commit constructs a CodeCommit AppError, used when a writer batch fails to
// commit after its per-record status vector has already been built.
func Commit(message string) *AppError {
	return &AppError{Code: CodeCommit, Message: message, Stack: captureStack(1)}
}

// WidthMismatch constructs a CodeWidthMismatch AppError, used when fingerprint
// or descriptor widths disagree between a query and a stored document.
func WidthMismatch(message string) *AppError {
	return &AppError{Code: CodeWidthMismatch, Message: message, Stack: captureStack(1)}
}

// FieldMissing constructs a CodeFieldMissing AppError.
func FieldMissing(field string) *AppError {
	return &AppError{Code: CodeFieldMissing, Message: "missing field: " + field, Stack: captureStack(1)}
}

// WriterBusy constructs a CodeWriterBusy AppError, returned when an index's
// single-writer lock is already held.
func WriterBusy(index string) *AppError {
	return &AppError{Code: CodeWriterBusy, Message: "writer busy for index: " + index, Stack: captureStack(1)}
}

// OutOfMemory constructs a CodeOutOfMemory AppError.
func OutOfMemory(message string) *AppError {
	return &AppError{Code: CodeOutOfMemory, Message: message, Stack: captureStack(1)}
}

