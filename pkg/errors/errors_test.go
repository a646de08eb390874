package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cheminee/search-engine/pkg/errors"
)

func TestNewCapturesCodeAndMessage(t *testing.T) {
	err := apperrors.New(apperrors.CodeParseError, "unexpected token at offset 4")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeParseError, err.Code)
	assert.Contains(t, err.Error(), "ParseError")
	assert.Contains(t, err.Error(), "unexpected token at offset 4")
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesUnknownCodeFromCause(t *testing.T) {
	inner := apperrors.New(apperrors.CodeIndexNotFound, "index missing")
	outer := apperrors.Wrap(inner, apperrors.CodeUnknown, "lookup failed")

	assert.Equal(t, apperrors.CodeIndexNotFound, outer.Code)
	assert.Same(t, inner, outer.Unwrap())
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, apperrors.Wrap(nil, apperrors.CodeStorage, "should not appear"))
}

func TestWithDetailAndWithCauseAreImmutable(t *testing.T) {
	base := apperrors.IndexNotFound("public-compounds")
	withDetail := base.WithDetail("catalog miss")

	assert.Empty(t, base.Detail)
	assert.Equal(t, "catalog miss", withDetail.Detail)
	assert.Contains(t, withDetail.Error(), "catalog miss")

	cause := fmt.Errorf("disk full")
	withCause := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.Equal(t, cause, withCause.Unwrap())
}

func TestIsCodeTraversesChain(t *testing.T) {
	root := apperrors.New(apperrors.CodeSegment, "merge failed")
	wrapped := fmt.Errorf("writer commit: %w", root)

	assert.True(t, apperrors.IsCode(wrapped, apperrors.CodeSegment))
	assert.False(t, apperrors.IsCode(wrapped, apperrors.CodeCommit))
}

func TestIsNotFoundMatchesIndexAndSchemaCodes(t *testing.T) {
	assert.True(t, apperrors.IsNotFound(apperrors.IndexNotFound("x")))
	assert.True(t, apperrors.IsNotFound(apperrors.SchemaUnknown("descriptor_v2")))
	assert.False(t, apperrors.IsNotFound(apperrors.WriterBusy("x")))
	assert.False(t, apperrors.IsNotFound(nil))
}

func TestGetCodeDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, apperrors.CodeOK, apperrors.GetCode(nil))
	assert.Equal(t, apperrors.CodeUnknown, apperrors.GetCode(fmt.Errorf("plain error")))
	assert.Equal(t, apperrors.CodeQueryParse, apperrors.GetCode(apperrors.QueryParse("bad range")))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[apperrors.ErrorCode]int{
		apperrors.CodeParseError:            http.StatusBadRequest,
		apperrors.CodeValidationFailed:      http.StatusBadRequest,
		apperrors.CodeStandardizationFailed: http.StatusBadRequest,
		apperrors.CodeIndexAlreadyExists:    http.StatusBadRequest,
		apperrors.CodeSchemaUnknown:         http.StatusNotFound,
		apperrors.CodeIndexNotFound:         http.StatusNotFound,
		apperrors.CodeWriterBusy:            http.StatusServiceUnavailable,
		apperrors.CodeStorage:               http.StatusInternalServerError,
		apperrors.CodeQueryParse:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), "code %s", code)
	}
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "IndexNotFound", apperrors.CodeIndexNotFound.String())
	assert.Equal(t, "Unknown", apperrors.ErrorCode(99999).String())
}
