package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
)

func TestNewIsTimeOrdered(t *testing.T) {
	first := New()
	second := New()

	assert.True(t, Less(first, second))
	assert.False(t, Less(second, first))
	assert.False(t, Less(first, first))
}

func TestParseField(t *testing.T) {
	v := New()
	parsed, err := ParseField("storeId", v.String())
	require.NoError(t, err)
	assert.Equal(t, v, parsed)

	_, err = ParseField("storeId", "S1")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
