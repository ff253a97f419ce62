package utils

import (
	"math"
)

// MaxQuantity is the largest quantity, floored to decimalPrecision decimals,
// whose total cost at unitCost fits inside budget.
func MaxQuantity(budget float64, unitCost float64, decimalPrecision int) float64 {
	if unitCost <= 0 || budget <= 0 || math.IsNaN(budget) || math.IsNaN(unitCost) {
		return 0
	}

	qty := RoundToDecimalPrecision(budget/unitCost, decimalPrecision)

	// floating point division can land one step above what budget covers
	step := math.Pow10(-decimalPrecision)
	for qty > 0 && qty*unitCost > budget {
		qty = RoundToDecimalPrecision(qty-step, decimalPrecision)
	}

	return math.Max(0, qty)
}

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(quantity*multiplier) / multiplier
}
