package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesScanPreservesNumericPrecision(t *testing.T) {
	var attrs Attributes
	require.NoError(t, attrs.Scan([]byte(`{"unit_cost":"19.9900","reorder":true,"note":"fragile","weight":12.5}`)))

	assert.Equal(t, "19.9900", attrs.GetDecimal("unit_cost").StringFixed(4))
	assert.True(t, attrs.GetBool("reorder"))
	assert.Equal(t, "fragile", attrs.GetString("note"))
	assert.Equal(t, "12.5", attrs.GetDecimal("weight").String())
}

func TestAttributesScanNilAndEmpty(t *testing.T) {
	var attrs Attributes
	require.NoError(t, attrs.Scan(nil))
	assert.Nil(t, attrs)

	require.NoError(t, attrs.Scan([]byte{}))
	assert.Nil(t, attrs)

	assert.Error(t, attrs.Scan(42))
}

func TestAttributesValueRoundTrip(t *testing.T) {
	var attrs Attributes
	attrs.Set("color", "red")
	attrs.Set("rack", "A-12")

	raw, err := attrs.Value()
	require.NoError(t, err)

	var decoded Attributes
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, "red", decoded.GetString("color"))
	assert.True(t, decoded.Has("rack"))
	assert.False(t, decoded.Has("missing"))
}

func TestNilAttributesValueIsNull(t *testing.T) {
	var attrs Attributes
	v, err := attrs.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
