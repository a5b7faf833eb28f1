package simulation

import (
	"math"

	"github.com/shopspring/decimal"
)

// clamp01 bounds x to [0, 1]. NaN maps to 0.
func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// roundTo rounds x half away from zero to the given number of decimals.
func roundTo(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}
