package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewave/internal/core/domain"
)

func adj(t domain.AdjustmentType, s domain.Strategy, v float64, r domain.Rounding) domain.Adjustment {
	return domain.Adjustment{Type: t, Strategy: s, Value: v, Rounding: r}
}

func TestPercentageIncrease(t *testing.T) {
	res := Calculate(100, adj(domain.AdjustmentPercentage, domain.StrategyIncrease, 10, domain.RoundingNone))
	require.True(t, res.Valid)
	assert.Equal(t, 100.0, res.OldPrice)
	assert.Equal(t, 110.0, res.NewPrice)
}

func TestFixedDecreaseWithRounding(t *testing.T) {
	// 19.99 - 5 = 14.99 → floor 14 → 14.99
	res := Calculate(19.99, adj(domain.AdjustmentFixedAmount, domain.StrategyDecrease, 5, domain.Rounding99))
	require.True(t, res.Valid)
	assert.Equal(t, 14.99, res.NewPrice)
}

func TestRounding95(t *testing.T) {
	res := Calculate(10, adj(domain.AdjustmentPercentage, domain.StrategyIncrease, 23, domain.Rounding95))
	require.True(t, res.Valid)
	assert.Equal(t, 12.95, res.NewPrice)
}

func TestNonPositiveResultRejected(t *testing.T) {
	// 150% is within the 1000% cap, but 10 * (1 - 1.5) = -5 must be rejected.
	res := Calculate(10, adj(domain.AdjustmentPercentage, domain.StrategyDecrease, 150, domain.RoundingNone))
	assert.False(t, res.Valid)
	assert.Equal(t, "Resulting price must be greater than 0", res.Reason)
	assert.Equal(t, 10.0, res.NewPrice)
}

func TestPercentageCap(t *testing.T) {
	for _, price := range []float64{0.5, 10, 99.99, 5000} {
		res := Calculate(price, adj(domain.AdjustmentPercentage, domain.StrategyIncrease, 1001, domain.RoundingNone))
		assert.False(t, res.Valid)
		assert.Equal(t, price, res.NewPrice)
	}
}

func TestFixedAmountCap(t *testing.T) {
	res := Calculate(100, adj(domain.AdjustmentFixedAmount, domain.StrategyIncrease, 10001, domain.RoundingNone))
	assert.False(t, res.Valid)
}

func TestNegativeValueRejected(t *testing.T) {
	res := Calculate(100, adj(domain.AdjustmentPercentage, domain.StrategyIncrease, -1, domain.RoundingNone))
	assert.False(t, res.Valid)
	assert.Equal(t, "Value cannot be negative", res.Reason)
}

func TestTwoDecimalRounding(t *testing.T) {
	// 19.99 * 1.1 = 21.989 → 21.99
	res := Calculate(19.99, adj(domain.AdjustmentPercentage, domain.StrategyIncrease, 10, domain.RoundingNone))
	require.True(t, res.Valid)
	assert.Equal(t, 21.99, res.NewPrice)
}

func TestSubUnitRoundingKeepsPointEnding(t *testing.T) {
	// floor of 0.40 is 0, so ROUND_99 produces 0.99 even on a decrease.
	res := Calculate(0.5, adj(domain.AdjustmentPercentage, domain.StrategyDecrease, 20, domain.Rounding99))
	require.True(t, res.Valid)
	assert.Equal(t, 0.99, res.NewPrice)
}
