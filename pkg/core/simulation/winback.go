package simulation

import (
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// winbackConversion is the share of price/quality-motivated former
// subscribers that actually switch back.
const winbackConversion = 0.3

// Benchmark is the reference point of the competing low-cost carriers.
type Benchmark struct {
	Price          float64 `json:"price" yaml:"price" mapstructure:"price"`
	QualityPremium float64 `json:"quality_premium" yaml:"quality_premium" mapstructure:"quality_premium"`
	DataGB         float64 `json:"data_gb" yaml:"data_gb" mapstructure:"data_gb"`
}

// DefaultBenchmark is the low-cost carrier average used when none is given.
func DefaultBenchmark() Benchmark {
	return Benchmark{
		Price:          30000,
		QualityPremium: 0.15,
		DataGB:         50,
	}
}

// EstimateWinback returns the probability that subscribers lost to low-cost
// carriers come back for newPlan. A nil benchmark means DefaultBenchmark.
//
//	rate = clamp01((clamp01((benchPrice − newFee) / benchPrice) + qualityPremium) × 0.3)
//
// A benchmark price <= 0 yields 0.
func EstimateWinback(newPlan models.RatePlanSpec, benchmark *Benchmark) float64 {
	b := DefaultBenchmark()
	if benchmark != nil {
		b = *benchmark
	}
	if b.Price <= 0 {
		return 0
	}
	priceBenefit := clamp01((b.Price - float64(newPlan.MonthlyFee)) / b.Price)
	return roundTo(clamp01((priceBenefit+b.QualityPremium)*winbackConversion), 4)
}
