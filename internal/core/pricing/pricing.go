package pricing

import (
	"fmt"
	"math"

	"pricewave/internal/core/domain"
)

// Limits for adjustment magnitudes. Percentages above 1000% and fixed
// amounts above 10000 are rejected as operator mistakes.
const (
	maxPercent     = 1000
	maxFixedAmount = 10000
)

// Result reports the outcome of a single price calculation. When Valid is
// false, NewPrice equals OldPrice and Reason explains the rejection.
type Result struct {
	OldPrice float64
	NewPrice float64
	Valid    bool
	Reason   string
}

// Validate checks the adjustment magnitude against the configured limits.
// It returns false with a human-readable reason on rejection.
func Validate(adj domain.Adjustment) (bool, string) {
	if adj.Value < 0 {
		return false, "Value cannot be negative"
	}
	switch adj.Type {
	case domain.AdjustmentPercentage:
		if adj.Value > maxPercent {
			return false, fmt.Sprintf("Percentage must not exceed %d%%", maxPercent)
		}
	case domain.AdjustmentFixedAmount:
		if adj.Value > maxFixedAmount {
			return false, fmt.Sprintf("Fixed amount must not exceed %d", maxFixedAmount)
		}
	}
	return true, ""
}

// Calculate derives a new price from the adjustment. The transform is
// applied first, then the optional price-point rounding, then the result is
// rejected if it is not strictly positive, and finally rounded to two
// decimal places. No I/O, deterministic.
func Calculate(oldPrice float64, adj domain.Adjustment) Result {
	if ok, reason := Validate(adj); !ok {
		return Result{OldPrice: oldPrice, NewPrice: oldPrice, Valid: false, Reason: reason}
	}

	var newPrice float64
	switch {
	case adj.Type == domain.AdjustmentPercentage && adj.Strategy == domain.StrategyIncrease:
		newPrice = oldPrice * (1 + adj.Value/100)
	case adj.Type == domain.AdjustmentPercentage && adj.Strategy == domain.StrategyDecrease:
		newPrice = oldPrice * (1 - adj.Value/100)
	case adj.Type == domain.AdjustmentFixedAmount && adj.Strategy == domain.StrategyIncrease:
		newPrice = oldPrice + adj.Value
	case adj.Type == domain.AdjustmentFixedAmount && adj.Strategy == domain.StrategyDecrease:
		newPrice = oldPrice - adj.Value
	default:
		return Result{
			OldPrice: oldPrice,
			NewPrice: oldPrice,
			Valid:    false,
			Reason:   fmt.Sprintf("Unknown adjustment type: %s %s", adj.Type, adj.Strategy),
		}
	}

	// Price-point rounding intentionally floors before adding the point
	// ending, even for prices below 1.00 (floor 0 → 0.99/0.95).
	switch adj.Rounding {
	case domain.Rounding99:
		newPrice = math.Floor(newPrice) + 0.99
	case domain.Rounding95:
		newPrice = math.Floor(newPrice) + 0.95
	}

	if newPrice <= 0 {
		return Result{
			OldPrice: oldPrice,
			NewPrice: oldPrice,
			Valid:    false,
			Reason:   "Resulting price must be greater than 0",
		}
	}

	return Result{
		OldPrice: oldPrice,
		NewPrice: roundToCents(newPrice),
		Valid:    true,
	}
}

func roundToCents(price float64) float64 {
	return math.Round(price*100) / 100
}
