package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up above midpoint", 33.336, 33.34},
		{"Round down below midpoint", 33.333, 33.33},
		{"No rounding needed", 12.5, 12.5},
		{"Two thirds", 200.0 / 3.0, 66.67},
		{"One third", 100.0 / 3.0, 33.33},
		{"Half away from zero", 0.125, 0.13},
		{"Negative half away from zero", -0.125, -0.13},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Exactly one hundredth", 0.01, 0.01},
		{"Hundred", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsBalanced(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly hundred", 100, true},
		{"Upper edge of band", 100.01, true},
		{"Lower edge of band", 99.99, true},
		{"Sum of thirds", 33.33 + 33.33 + 33.34, true},
		{"Just above band", 100.02, false},
		{"Just below band", 99.98, false},
		{"Ninety", 90, false},
		{"Zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBalanced(tt.input); got != tt.expected {
				t.Errorf("IsBalanced(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Equal values", 10, 10, 0.01, true},
		{"Inside tolerance", 10, 10.005, 0.01, true},
		{"Outside tolerance", 10, 10.5, 0.01, false},
		{"Order independent", 10.5, 10, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(tt.val1, tt.val2, tt.tolerance); got != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v", tt.val1, tt.val2, tt.tolerance, got, tt.expected)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	if !InRange(0, 0, 100) || !InRange(100, 0, 100) || !InRange(42.5, 0, 100) {
		t.Error("expected bounds to be inclusive")
	}
	if InRange(-0.01, 0, 100) || InRange(100.01, 0, 100) {
		t.Error("expected values outside [0, 100] to be rejected")
	}
}

func TestCalculatePercentage(t *testing.T) {
	if got := CalculatePercentage(10, 20); got != 50 {
		t.Errorf("CalculatePercentage(10, 20) = %v, expected 50", got)
	}
	if got := CalculatePercentage(10, 0); got != 0 {
		t.Errorf("CalculatePercentage(10, 0) = %v, expected 0", got)
	}
}

func TestSumAndIsPositive(t *testing.T) {
	if got := Sum([]float64{30, 30, 40}); got != 100 {
		t.Errorf("Sum = %v, expected 100", got)
	}
	if got := Sum(nil); got != 0 {
		t.Errorf("Sum(nil) = %v, expected 0", got)
	}
	if IsPositive(0) || IsPositive(-1) || !IsPositive(0.001) {
		t.Error("IsPositive must be strictly greater than zero")
	}
}
