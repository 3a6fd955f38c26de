package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "intentions/pkg/domain-errors"
)

var now = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestNewIntent(t *testing.T) {
	i, err := NewIntent(" Summarize ", "Summarize a document", "plain text", ptr(" "), ptr(" Academic "), nil, now)
	require.NoError(t, err)
	assert.Equal(t, "Summarize", i.Name)
	assert.Nil(t, i.OutputStructure)
	assert.Equal(t, "Academic", *i.Context)
	assert.NotNil(t, i.Facts)

	tests := []struct {
		field              string
		name, desc, format string
	}{
		{"name", "  ", "d", "f"},
		{"description", "n", "", "f"},
		{"output_format", "n", "d", "\t"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := NewIntent(tt.name, tt.desc, tt.format, nil, nil, nil, now)
			de, ok := dErrors.As(err)
			require.True(t, ok)
			assert.Equal(t, dErrors.CodeValidation, de.Code)
			assert.Equal(t, tt.field, de.Fields[0].Field)
		})
	}
}

func TestWith(t *testing.T) {
	i, err := NewIntent("n", "d", "json", nil, nil, nil, now)
	require.NoError(t, err)

	next, err := i.With(FieldConstraints, ptr(" max 500 words "))
	require.NoError(t, err)
	assert.Equal(t, "max 500 words", *next.Constraints)
	assert.Nil(t, i.Constraints)

	cleared, err := next.With(FieldConstraints, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.Constraints)

	_, err = i.With(FieldOutputFormat, nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = i.With(FieldName, ptr("   "))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestFieldByPath(t *testing.T) {
	f, ok := FieldByPath("output-structure")
	require.True(t, ok)
	assert.Equal(t, FieldOutputStructure, f)
	assert.False(t, f.Required())

	_, ok = FieldByPath("facts")
	assert.False(t, ok)
}

func TestNewFact(t *testing.T) {
	f, err := NewFact("  the sky is blue ", now)
	require.NoError(t, err)
	assert.Equal(t, "the sky is blue", f.Value)

	_, err = NewFact(" ", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
