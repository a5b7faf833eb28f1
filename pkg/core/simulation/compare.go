package simulation

import (
	"sort"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SCENARIO COMPARISON
// =============================================================================

// Delta is the difference of a scenario's headline numbers against the base
// scenario.
type Delta struct {
	ARPUChangePct       float64 `json:"arpu_change_pct"`
	AnnualRevenueImpact int64   `json:"annual_revenue_impact"`
	NewSubscribers      int64   `json:"new_subscribers"`
}

// ComparisonRow is one scenario in a comparison.
type ComparisonRow struct {
	ScenarioID   string                  `json:"scenario_id"`
	ScenarioType models.ScenarioType     `json:"scenario_type"`
	NewPlanName  string                  `json:"new_plan_name"`
	NewPlanFee   int64                   `json:"new_plan_fee"`
	WinbackRate  float64                 `json:"winback_rate"`
	Results      models.SimulationResult `json:"results"`
	VsBase       *Delta                  `json:"vs_base,omitempty"`
}

// Comparison ranks a set of scenarios by annual revenue impact.
type Comparison struct {
	Rows            []ComparisonRow `json:"rows"`
	BestScenarioID  string          `json:"best_scenario_id,omitempty"`
	WorstScenarioID string          `json:"worst_scenario_id,omitempty"`
	BaseScenarioID  string          `json:"base_scenario_id,omitempty"`
}

// Compare lays scenarios side by side in conservative, base, optimistic
// order. Best and worst are picked by annual revenue impact; the first one
// wins a tie. When a base scenario is present every row carries its delta
// against it.
func Compare(scenarios []models.SimulationScenario) Comparison {
	ordered := append([]models.SimulationScenario(nil), scenarios...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return typeRank(ordered[i].ScenarioType) < typeRank(ordered[j].ScenarioType)
	})

	cmp := Comparison{Rows: make([]ComparisonRow, 0, len(ordered))}
	var base *models.SimulationScenario
	for i := range ordered {
		if ordered[i].ScenarioType == models.ScenarioBase {
			base = &ordered[i]
			cmp.BaseScenarioID = base.ScenarioID
			break
		}
	}

	var best, worst *models.SimulationScenario
	for i := range ordered {
		s := &ordered[i]
		row := ComparisonRow{
			ScenarioID:   s.ScenarioID,
			ScenarioType: s.ScenarioType,
			NewPlanName:  s.NewPlan.Name,
			NewPlanFee:   s.NewPlan.MonthlyFee,
			WinbackRate:  s.WinbackRate,
			Results:      s.Results,
		}
		if base != nil {
			row.VsBase = &Delta{
				ARPUChangePct:       subtractPct(s.Results.ARPUChangePct, base.Results.ARPUChangePct),
				AnnualRevenueImpact: s.Results.AnnualRevenueImpact - base.Results.AnnualRevenueImpact,
				NewSubscribers:      s.Results.NewSubscribers - base.Results.NewSubscribers,
			}
		}
		cmp.Rows = append(cmp.Rows, row)

		if best == nil || s.Results.AnnualRevenueImpact > best.Results.AnnualRevenueImpact {
			best = s
		}
		if worst == nil || s.Results.AnnualRevenueImpact < worst.Results.AnnualRevenueImpact {
			worst = s
		}
	}
	if best != nil {
		cmp.BestScenarioID = best.ScenarioID
		cmp.WorstScenarioID = worst.ScenarioID
	}
	return cmp
}

func typeRank(t models.ScenarioType) int {
	for i, st := range models.ScenarioTypes {
		if st == t {
			return i
		}
	}
	return len(models.ScenarioTypes)
}

// subtractPct subtracts two 2-decimal percentages without float drift.
func subtractPct(a, b float64) float64 {
	d, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return d
}
