package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("store: %w", Wrap(base, CodeNotFound, "user not found"))

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeValidation))
	assert.False(t, HasCode(base, CodeNotFound))
	assert.ErrorIs(t, wrapped, base)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestValidationCarriesField(t *testing.T) {
	err := Validation("name", "Name cannot be empty")

	de, ok := As(err)
	require.True(t, ok)
	require.Len(t, de.Fields, 1)
	assert.Equal(t, "name", de.Fields[0].Field)
	assert.Equal(t, "validation_error: Name cannot be empty", err.Error())
}

func TestWithFieldsDoesNotMutateReceiver(t *testing.T) {
	base := New(CodeValidation, "invalid")
	withField := base.WithFields(FieldError{Field: "price", Message: "must be >= 0"})

	assert.Empty(t, base.Fields)
	assert.Len(t, withField.Fields, 1)
}
