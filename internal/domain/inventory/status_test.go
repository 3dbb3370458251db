package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockerp/internal/core/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		min      float64
		max      float64
		want     StockClass
	}{
		{"zero balance is out", 0, 2, 20, ClassOut},
		{"negative balance is out", -1, 2, 20, ClassOut},
		{"below min is low", 1, 2, 20, ClassLow},
		{"exactly min is low", 2, 2, 20, ClassLow},
		{"between thresholds is normal", 10, 2, 20, ClassNormal},
		{"exactly max is over", 20, 2, 20, ClassOver},
		{"above max is over", 25, 2, 20, ClassOver},
		{"no thresholds configured", 5, 0, 0, ClassNormal},
		{"min disabled, max hit", 30, 0, 20, ClassOver},
		{"out beats low", 0, 5, 0, ClassOut},
		// Misconfigured max <= min: low wins for small balances, master data
		// owns threshold sanity.
		{"low checked before over", 3, 5, 4, ClassLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(
				types.NewQuantityFromFloat64(tt.quantity),
				types.NewQuantityFromFloat64(tt.min),
				types.NewQuantityFromFloat64(tt.max),
			)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStockClassText(t *testing.T) {
	assert.Equal(t, "Out of stock", ClassOut.Text())
	assert.Equal(t, "Low stock", ClassLow.Text())
	assert.Equal(t, "Overstock", ClassOver.Text())
	assert.Equal(t, "Normal", ClassNormal.Text())

	assert.True(t, ClassOut.IsWarning())
	assert.True(t, ClassLow.IsWarning())
	assert.True(t, ClassOver.IsWarning())
	assert.False(t, ClassNormal.IsWarning())
}
