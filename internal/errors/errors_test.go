package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	cause := stderrors.New("unexpected token")

	withCause := ProcessingError("failed to decode request body", cause)
	assert.Equal(t, "PROCESSING_ERROR: failed to decode request body (caused by: unexpected token)", withCause.Error())
	assert.Equal(t, "failed to decode request body: unexpected token", withCause.PublicMessage())
	assert.True(t, stderrors.Is(withCause, cause))

	bare := InternalError("scorer not loaded", nil)
	assert.Equal(t, "INTERNAL_ERROR: scorer not loaded", bare.Error())
	assert.Equal(t, "scorer not loaded", bare.PublicMessage())
}

func TestAppError_RecordsCaller(t *testing.T) {
	err := ArtifactError("bad artifact", nil)
	assert.True(t, strings.HasSuffix(err.File, "errors_test.go"), "file was %s", err.File)
	assert.NotZero(t, err.Line)

	direct := NewAppError("CUSTOM", "custom", nil)
	assert.True(t, strings.HasSuffix(direct.File, "errors_test.go"), "file was %s", direct.File)
}

func TestAppError_Builders(t *testing.T) {
	err := ValidationError("bad input", nil).WithOperation("predict").WithDetails("field x")
	assert.Equal(t, "predict", err.Operation)
	assert.Equal(t, "field x", err.Details)
}

func TestIsCode(t *testing.T) {
	inner := ArtifactError("bad scaler", nil)
	outer := InternalError("startup failed", inner)
	wrapped := fmt.Errorf("main: %w", outer)

	assert.True(t, IsCode(wrapped, ErrCodeInternalError))
	assert.True(t, IsCode(wrapped, ErrCodeArtifactError))
	assert.False(t, IsCode(wrapped, ErrCodeValidationError))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeInternalError))
	assert.False(t, IsCode(nil, ErrCodeInternalError))
}

func TestMissingFeaturesError(t *testing.T) {
	err := &MissingFeaturesError{
		Required: []string{"a", "b", "c"},
		Missing:  []string{"b"},
	}
	wrapped := ValidationError("Missing one or more required features.", err)

	got, ok := AsMissingFeatures(wrapped)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, got.Required)
	assert.Equal(t, "missing 1 of 3 required features: [b]", got.Error())

	_, ok = AsMissingFeatures(stderrors.New("plain"))
	assert.False(t, ok)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeValidationError, appErr.Code)
}
