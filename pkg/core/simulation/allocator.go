package simulation

import (
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUBSCRIBER ALLOCATION & REVENUE IMPACT
// =============================================================================

// Defaults used when the caller leaves the subscriber base unspecified.
const (
	DefaultTotalSubscribers int64   = 1_000_000
	DefaultAvgARPU          float64 = 50_000
)

// Only this share of the theoretically winnable population is reachable in
// one period.
var winbackReach = decimal.NewFromFloat(0.1)

// Direction classifies migrating subscribers by the fee change they see.
type Direction string

const (
	Downgrade Direction = "downgrade"
	Upgrade   Direction = "upgrade"
)

// Input is the scenario part of a simulation: the new plan and the outputs of
// the two estimators.
type Input struct {
	ScenarioType   models.ScenarioType `json:"scenario_type"`
	NewPlan        models.RatePlanSpec `json:"new_plan"`
	MigrationRates map[string]float64  `json:"migration_rates"`
	WinbackRate    float64             `json:"winback_rate"`
}

// PlanImpact is the per-plan breakdown of a simulation. AllocatedSubscribers
// is set when the plan's count came from the remainder split.
type PlanImpact struct {
	Name                 string    `json:"name"`
	MonthlyFee           int64     `json:"monthly_fee"`
	Subscribers          int64     `json:"subscribers"`
	AllocatedSubscribers bool      `json:"allocated_subscribers"`
	MigrationRate        float64   `json:"migration_rate"`
	Migrating            int64     `json:"migrating"`
	Direction            Direction `json:"direction"`
	MonthlyRevenueDelta  int64     `json:"monthly_revenue_delta"`
}

// Outcome is a simulation result together with its breakdown.
type Outcome struct {
	Result               models.SimulationResult `json:"result"`
	Plans                []PlanImpact            `json:"plans"`
	RevenueGain          int64                   `json:"revenue_gain"`
	RevenueLoss          int64                   `json:"revenue_loss"`
	MonthlyRevenueChange int64                   `json:"monthly_revenue_change"`
}

// AllocateSubscribers returns the subscriber count used for each plan, in
// input order. Plans with an explicit positive count keep it. The remainder
// of totalSubscribers (never below 0) is split evenly across the plans
// without a count using integer division; whatever the division leaves over
// is dropped, not redistributed.
func AllocateSubscribers(plans []models.CurrentPlan, totalSubscribers int64) []int64 {
	var explicit int64
	missing := 0
	for _, p := range plans {
		if p.HasSubscribers() {
			explicit += p.Subscribers
		} else {
			missing++
		}
	}

	var share int64
	if missing > 0 {
		remaining := totalSubscribers - explicit
		if remaining < 0 {
			remaining = 0
		}
		share = remaining / int64(missing)
	}

	out := make([]int64, len(plans))
	for i, p := range plans {
		if p.HasSubscribers() {
			out[i] = p.Subscribers
		} else {
			out[i] = share
		}
	}
	return out
}

// Simulate runs the allocation and revenue aggregation for one scenario and
// returns the headline result.
func Simulate(in Input, plans []models.CurrentPlan, totalSubscribers int64, avgARPU float64) models.SimulationResult {
	return SimulateDetailed(in, plans, totalSubscribers, avgARPU).Result
}

// SimulateDetailed is Simulate with the per-plan breakdown.
//
// For each plan, migrating = floor(subscribers × rate). Plans priced above
// the new plan lose (oldFee − newFee) per migrating subscriber; all others
// gain (newFee − oldFee). Win-back subscribers, floor(total × winbackRate ×
// 0.1), each add the full new fee. Plans without a rate use 0.
func SimulateDetailed(in Input, plans []models.CurrentPlan, totalSubscribers int64, avgARPU float64) Outcome {
	newFee := in.NewPlan.MonthlyFee
	allocated := AllocateSubscribers(plans, totalSubscribers)

	var (
		newSubs, downgradeSubs int64
		gain, loss             int64
	)
	impacts := make([]PlanImpact, 0, len(plans))

	for i, plan := range plans {
		subscribers := allocated[i]
		rate := in.MigrationRates[plan.Name]
		migrating := decimal.NewFromInt(subscribers).Mul(decimal.NewFromFloat(rate)).Floor().IntPart()
		newSubs += migrating

		impact := PlanImpact{
			Name:                 plan.Name,
			MonthlyFee:           plan.MonthlyFee,
			Subscribers:          subscribers,
			AllocatedSubscribers: !plan.HasSubscribers(),
			MigrationRate:        rate,
			Migrating:            migrating,
		}
		if plan.MonthlyFee > newFee {
			downgradeSubs += migrating
			delta := migrating * (plan.MonthlyFee - newFee)
			loss += delta
			impact.Direction = Downgrade
			impact.MonthlyRevenueDelta = -delta
		} else {
			delta := migrating * (newFee - plan.MonthlyFee)
			gain += delta
			impact.Direction = Upgrade
			impact.MonthlyRevenueDelta = delta
		}
		impacts = append(impacts, impact)
	}

	winback := decimal.NewFromInt(totalSubscribers).
		Mul(decimal.NewFromFloat(in.WinbackRate)).
		Mul(winbackReach).
		Floor().IntPart()
	if winback < 0 {
		winback = 0
	}
	newSubs += winback
	gain += winback * newFee

	change := gain - loss

	return Outcome{
		Result: models.SimulationResult{
			ARPUChangePct:        arpuChangePct(change, totalSubscribers, avgARPU),
			AnnualRevenueImpact:  decimal.NewFromInt(change).Mul(decimal.NewFromInt(12)).Round(0).IntPart(),
			NewSubscribers:       newSubs,
			DowngradeSubscribers: downgradeSubs,
			WinbackSubscribers:   winback,
		},
		Plans:                impacts,
		RevenueGain:          gain,
		RevenueLoss:          loss,
		MonthlyRevenueChange: change,
	}
}

// arpuChangePct is 100 × change / (subscribers × arpu), rounded to 2
// decimals, and 0 when the current revenue base is not positive.
func arpuChangePct(change, totalSubscribers int64, avgARPU float64) float64 {
	base := decimal.NewFromInt(totalSubscribers).Mul(decimal.NewFromFloat(avgARPU))
	if !base.IsPositive() {
		return 0
	}
	pct, _ := decimal.NewFromInt(change).Mul(decimal.NewFromInt(100)).Div(base).Round(2).Float64()
	return pct
}
