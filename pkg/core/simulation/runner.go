package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// =============================================================================
// SCENARIO RUNNER
// =============================================================================

// ErrInvalidInput marks simulation input that is structurally unusable.
var ErrInvalidInput = errors.New("invalid simulation input")

// RunRequest is everything needed to simulate a new plan under one or more
// scenario types.
type RunRequest struct {
	NewPlan          models.RatePlanSpec   `json:"new_plan" yaml:"new_plan"`
	PremiumPlan      *models.RatePlanSpec  `json:"premium_plan,omitempty" yaml:"premium_plan,omitempty"`
	CurrentPlans     []models.CurrentPlan  `json:"current_plans" yaml:"current_plans"`
	TotalSubscribers int64                 `json:"total_subscribers,omitempty" yaml:"total_subscribers,omitempty"`
	AvgARPU          float64               `json:"avg_arpu,omitempty" yaml:"avg_arpu,omitempty"`
	Benchmark        *Benchmark            `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	Types            []models.ScenarioType `json:"scenario_types,omitempty" yaml:"scenario_types,omitempty"`
}

// WithDefaults fills zero subscriber totals, ARPU and scenario types.
func (r RunRequest) WithDefaults() RunRequest {
	if r.TotalSubscribers <= 0 {
		r.TotalSubscribers = DefaultTotalSubscribers
	}
	if r.AvgARPU <= 0 {
		r.AvgARPU = DefaultAvgARPU
	}
	if len(r.Types) == 0 {
		r.Types = append([]models.ScenarioType(nil), models.ScenarioTypes...)
	}
	r.NewPlan = r.NewPlan.Normalize()
	if r.PremiumPlan != nil {
		p := r.PremiumPlan.Normalize()
		r.PremiumPlan = &p
	}
	return r
}

// Validate checks the plans and scenario types of the request.
func (r RunRequest) Validate() error {
	if err := r.NewPlan.Validate(); err != nil {
		return fmt.Errorf("%w: new plan: %w", ErrInvalidInput, err)
	}
	if r.PremiumPlan != nil {
		if err := r.PremiumPlan.Validate(); err != nil {
			return fmt.Errorf("%w: premium plan: %w", ErrInvalidInput, err)
		}
	}
	if len(r.CurrentPlans) == 0 {
		return fmt.Errorf("%w: no current plans", ErrInvalidInput)
	}
	if err := models.ValidateCurrentPlans(r.CurrentPlans); err != nil {
		return fmt.Errorf("%w: current plans: %w", ErrInvalidInput, err)
	}
	for _, t := range r.Types {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown scenario type %q", ErrInvalidInput, t)
		}
	}
	return nil
}

// ScenarioRun is one simulated scenario with its per-plan breakdown.
type ScenarioRun struct {
	Scenario models.SimulationScenario `json:"scenario"`
	Outcome  Outcome                   `json:"outcome"`
}

// RunScenarios simulates the new plan under every requested scenario type.
// The win-back rate is computed once and shared; migration rates differ per
// type. Each returned scenario carries a fresh identifier and the given
// creation time, ready to be saved.
func RunScenarios(req RunRequest, now time.Time) ([]ScenarioRun, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	winback := EstimateWinback(req.NewPlan, req.Benchmark)
	runs := make([]ScenarioRun, 0, len(req.Types))
	for _, t := range req.Types {
		rates := EstimateMigrationRates(req.CurrentPlans, req.NewPlan, t)
		outcome := SimulateDetailed(Input{
			ScenarioType:   t,
			NewPlan:        req.NewPlan,
			MigrationRates: rates,
			WinbackRate:    winback,
		}, req.CurrentPlans, req.TotalSubscribers, req.AvgARPU)

		var premium *models.RatePlanSpec
		if req.PremiumPlan != nil {
			p := req.PremiumPlan.Clone()
			premium = &p
		}
		runs = append(runs, ScenarioRun{
			Scenario: models.SimulationScenario{
				ScenarioID:     models.NewScenarioID(),
				ScenarioType:   t,
				NewPlan:        req.NewPlan.Clone(),
				PremiumPlan:    premium,
				MigrationRates: rates,
				WinbackRate:    winback,
				Results:        outcome.Result,
				CreatedAt:      now.UTC(),
			},
			Outcome: outcome,
		})
	}
	return runs, nil
}

// Scenarios strips the breakdown from a set of runs.
func Scenarios(runs []ScenarioRun) []models.SimulationScenario {
	out := make([]models.SimulationScenario, len(runs))
	for i, r := range runs {
		out[i] = r.Scenario
	}
	return out
}
