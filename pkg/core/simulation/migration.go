// Package simulation estimates how subscribers react to a new rate plan and
// what that does to revenue and ARPU.
//
// Every function here is a pure function of its inputs and safe to call
// concurrently.
package simulation

import (
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// =============================================================================
// MIGRATION RATE ESTIMATION
// =============================================================================

// BaseMigrationRate is the share of a plan's subscribers expected to move to
// an equally priced, sufficiently provisioned new plan.
const BaseMigrationRate = 0.05

// usage penalty when the new plan's data allowance is below current usage
const insufficientAllowanceFit = 0.5

var scenarioMultipliers = map[models.ScenarioType]float64{
	models.ScenarioConservative: 0.7,
	models.ScenarioBase:         1.0,
	models.ScenarioOptimistic:   1.3,
}

var segmentMultipliers = map[models.Segment]float64{
	models.SegmentYouth:   1.2,
	models.SegmentGeneral: 1.0,
	models.SegmentSenior:  0.8,
}

// ScenarioMultiplier returns the scaling for a scenario type. Unknown types
// use the base multiplier.
func ScenarioMultiplier(t models.ScenarioType) float64 {
	if m, ok := scenarioMultipliers[t]; ok {
		return m
	}
	return scenarioMultipliers[models.ScenarioBase]
}

// SegmentMultiplier returns the scaling for a target segment. Unknown or
// empty segments count as general.
func SegmentMultiplier(s models.Segment) float64 {
	if m, ok := segmentMultipliers[s]; ok {
		return m
	}
	return segmentMultipliers[models.SegmentGeneral]
}

// EstimateMigrationRates returns, per current plan name, the probability that
// a subscriber of that plan moves to newPlan.
//
//	rate = clamp01(0.05 × (1 + 2×priceFactor) × usageFit × scenario × segment)
//
// priceFactor = clamp01((oldFee − newFee) / oldFee); usageFit is 1 when the
// plan's data usage fits in the new allowance and 0.5 otherwise. Plans with
// a fee <= 0 get exactly 0. Rates are rounded to 4 decimals.
func EstimateMigrationRates(current []models.CurrentPlan, newPlan models.RatePlanSpec, scenario models.ScenarioType) map[string]float64 {
	newFee := float64(newPlan.MonthlyFee)
	scale := ScenarioMultiplier(scenario) * SegmentMultiplier(newPlan.TargetSegment)

	rates := make(map[string]float64, len(current))
	for _, plan := range current {
		if plan.MonthlyFee <= 0 {
			rates[plan.Name] = 0
			continue
		}
		oldFee := float64(plan.MonthlyFee)
		priceFactor := clamp01((oldFee - newFee) / oldFee)

		usageFit := 1.0
		if plan.DataAllowanceGB > newPlan.DataAllowanceGB {
			usageFit = insufficientAllowanceFit
		}

		rate := BaseMigrationRate * (1 + 2*priceFactor) * usageFit * scale
		rates[plan.Name] = roundTo(clamp01(rate), 4)
	}
	return rates
}
