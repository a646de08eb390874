// Package errors provides the typed error taxonomy used across the search
// engine, from the kernel boundary up through the HTTP and CLI surfaces.
package errors

import "net/http"

// ErrorCode classifies a failure by the part of the system that raised it.
// The taxonomy groups causes into four families: Input, Backend, Contract, Resource.
type ErrorCode int

const (
	CodeOK      ErrorCode = 0
	CodeUnknown ErrorCode = 10000

	// ── Input: the caller supplied something the system could not act on ──
	CodeParseError            ErrorCode = 11001
	CodeValidationFailed      ErrorCode = 11002
	CodeStandardizationFailed ErrorCode = 11003
	CodeSchemaUnknown         ErrorCode = 11004
	CodeIndexNotFound         ErrorCode = 11005
	CodeIndexAlreadyExists    ErrorCode = 11006

	// ── Backend: the index engine or its storage misbehaved ──
	CodeQueryParse ErrorCode = 12001
	CodeStorage    ErrorCode = 12002
	CodeSegment    ErrorCode = 12003
	CodeCommit     ErrorCode = 12004

	// ── Contract: an invariant between components was violated ──
	CodeWidthMismatch ErrorCode = 13001
	CodeFieldMissing  ErrorCode = 13002

	// ── Resource: the system is temporarily unable to service the call ──
	CodeWriterBusy  ErrorCode = 14001
	CodeOutOfMemory ErrorCode = 14002
)

// String returns the human-readable name associated with an ErrorCode.
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeParseError:
		return "ParseError"
	case CodeValidationFailed:
		return "ValidationFailed"
	case CodeStandardizationFailed:
		return "StandardizationFailed"
	case CodeSchemaUnknown:
		return "SchemaUnknown"
	case CodeIndexNotFound:
		return "IndexNotFound"
	case CodeIndexAlreadyExists:
		return "IndexAlreadyExists"
	case CodeQueryParse:
		return "QueryParse"
	case CodeStorage:
		return "Storage"
	case CodeSegment:
		return "Segment"
	case CodeCommit:
		return "Commit"
	case CodeWidthMismatch:
		return "WidthMismatch"
	case CodeFieldMissing:
		return "FieldMissing"
	case CodeWriterBusy:
		return "WriterBusy"
	case CodeOutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// HTTPStatus maps a code onto the status codes of the HTTP surface: 400 bad
// input or index exists, 404 unknown index/schema, 503 writer busy, 500 for
// everything else.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case CodeParseError, CodeValidationFailed, CodeStandardizationFailed, CodeIndexAlreadyExists:
		return http.StatusBadRequest
	case CodeSchemaUnknown, CodeIndexNotFound:
		return http.StatusNotFound
	case CodeWriterBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
