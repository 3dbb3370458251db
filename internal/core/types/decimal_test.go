package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityUnmarshalScale(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Quantity
		err   bool
	}{
		{name: "integer", input: `3`, want: Quantity(3 * QuantityScale)},
		{name: "four decimals", input: `0.0001`, want: Quantity(1)},
		{name: "quoted string", input: `"2.5"`, want: Quantity(25_000)},
		{name: "negative", input: `-1.25`, want: Quantity(-12_500)},
		{name: "trailing zeros past scale", input: `0.500000`, want: Quantity(5_000)},
		{name: "below representable scale", input: `0.00005`, err: true},
		{name: "nonzero fifth decimal", input: `"1.23456"`, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var q Quantity
			err := json.Unmarshal([]byte(tc.input), &q)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, q)
		})
	}
}

func TestQuantityStringRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(12.3456)
	assert.Equal(t, "12.3456", q.String())

	var back Quantity
	require.NoError(t, json.Unmarshal([]byte(q.String()), &back))
	assert.Equal(t, q, back)
}
