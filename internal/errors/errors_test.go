// internal/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, TypeOf(NewValidationError("bad input", nil)))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(NewNotFoundError("missing", nil)))
	assert.Equal(t, ErrorTypeGeneration, TypeOf(NewGenerationError("failed", nil)))
	assert.Equal(t, ErrorTypeAsset, TypeOf(NewAssetError("no image", nil)))
	assert.Equal(t, ErrorTypeProcessing, TypeOf(fmt.Errorf("plain error")))
}

func TestTypeOfUnwrapsWrappedErrors(t *testing.T) {
	inner := NewNotFoundError("missing record", nil)
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, ErrorTypeNotFound, TypeOf(wrapped))
	assert.True(t, IsNotFoundError(wrapped))
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewGenerationError("generation failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "generation failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.False(t, IsValidationError(NewAssetError("x", nil)))
	assert.True(t, IsGenerationError(NewGenerationError("x", nil)))
	assert.True(t, IsAssetError(NewAssetError("x", nil)))
	assert.False(t, IsNotFoundError(nil))
}
