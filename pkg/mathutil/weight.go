// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/plan-weights/pkg/constants"
)

// Round rounds a value to two decimals, half away from zero.
// Used for weights written back into a plan and for logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsPositive checks if a value is strictly positive
func IsPositive(val float64) bool {
	return val > 0
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// comparisonEpsilon absorbs binary representation error so that a sum such
// as 100.01 counts as inside the 0.01 band.
const comparisonEpsilon = 1e-9

// IsBalanced reports whether a sibling sum equals 100 within the fixed
// weight tolerance.
func IsBalanced(sum float64) bool {
	return WithinTolerance(sum, constants.TargetWeightTotal, constants.WeightTolerance+comparisonEpsilon)
}

// InRange checks whether val lies within [min, max].
func InRange(val, min, max float64) bool {
	return val >= min && val <= max
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// Sum adds up a slice of values.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
