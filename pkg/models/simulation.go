package models

import (
	"time"
)

// ScenarioType names one of the simulation scenarios.
type ScenarioType string

const (
	ScenarioConservative ScenarioType = "conservative"
	ScenarioBase         ScenarioType = "base"
	ScenarioOptimistic   ScenarioType = "optimistic"
)

// ScenarioTypes lists the scenarios in reporting order.
var ScenarioTypes = []ScenarioType{ScenarioConservative, ScenarioBase, ScenarioOptimistic}

// Valid reports whether t is one of the known scenario types.
func (t ScenarioType) Valid() bool {
	switch t {
	case ScenarioConservative, ScenarioBase, ScenarioOptimistic:
		return true
	}
	return false
}

// SimulationResult holds the headline numbers of one simulation run.
// ARPUChangePct is a signed percentage, AnnualRevenueImpact a signed amount
// in currency units.
type SimulationResult struct {
	ARPUChangePct        float64 `json:"arpu_change_pct"`
	AnnualRevenueImpact  int64   `json:"annual_revenue_impact"`
	NewSubscribers       int64   `json:"new_subscribers" validate:"gte=0"`
	DowngradeSubscribers int64   `json:"downgrade_subscribers" validate:"gte=0"`
	WinbackSubscribers   int64   `json:"winback_subscribers" validate:"gte=0"`
}

func (r SimulationResult) ToMap() (map[string]any, error) {
	return toMap(r)
}

// SimulationResultFromMap is the inverse of SimulationResult.ToMap.
func SimulationResultFromMap(m map[string]any) (SimulationResult, error) {
	var r SimulationResult
	if err := fromMap(m, &r); err != nil {
		return SimulationResult{}, err
	}
	if err := validateStruct("results", r); err != nil {
		return SimulationResult{}, err
	}
	return r, nil
}

// SimulationScenario is one complete simulation run, inputs and outputs,
// tagged with its scenario type. A scenario owns its own copy of the plans.
type SimulationScenario struct {
	ScenarioID     string             `json:"scenario_id" validate:"required"`
	ScenarioType   ScenarioType       `json:"scenario_type" validate:"required,oneof=conservative base optimistic"`
	NewPlan        RatePlanSpec       `json:"new_plan"`
	PremiumPlan    *RatePlanSpec      `json:"premium_plan"`
	MigrationRates map[string]float64 `json:"migration_rates" validate:"dive,gte=0,lte=1"`
	WinbackRate    float64            `json:"winback_rate" validate:"gte=0,lte=1"`
	Results        SimulationResult   `json:"results"`
	CreatedAt      time.Time          `json:"created_at" validate:"required"`
}

func (s SimulationScenario) Validate() error {
	return validateStruct("scenario", s)
}

func (s SimulationScenario) ToMap() (map[string]any, error) {
	return toMap(s.Normalize())
}

// ScenarioFromMap is the inverse of SimulationScenario.ToMap.
func ScenarioFromMap(m map[string]any) (SimulationScenario, error) {
	var s SimulationScenario
	if err := fromMap(m, &s); err != nil {
		return SimulationScenario{}, err
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return SimulationScenario{}, err
	}
	return s, nil
}

// Input converts a scenario back into store input, keeping its identifier.
func (s SimulationScenario) Input() ScenarioInput {
	s = s.Normalize()
	rates := make(map[string]float64, len(s.MigrationRates))
	for k, v := range s.MigrationRates {
		rates[k] = v
	}
	newPlan := s.NewPlan
	winback := s.WinbackRate
	results := s.Results
	createdAt := s.CreatedAt
	return ScenarioInput{
		ScenarioID:     s.ScenarioID,
		ScenarioType:   s.ScenarioType,
		NewPlan:        &newPlan,
		PremiumPlan:    s.PremiumPlan,
		MigrationRates: rates,
		WinbackRate:    &winback,
		Results:        &results,
		CreatedAt:      &createdAt,
	}
}

// Normalize fills plan defaults, replaces a nil rate map with an empty one and
// moves CreatedAt to UTC.
func (s SimulationScenario) Normalize() SimulationScenario {
	s.NewPlan = s.NewPlan.Normalize()
	if s.PremiumPlan != nil {
		p := s.PremiumPlan.Normalize()
		s.PremiumPlan = &p
	}
	if s.MigrationRates == nil {
		s.MigrationRates = map[string]float64{}
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s
}

// ScenarioInput is what callers hand to the scenario store.
type ScenarioInput struct {
	ScenarioID     string             `json:"scenario_id,omitempty"`
	ScenarioType   ScenarioType       `json:"scenario_type" validate:"required,oneof=conservative base optimistic"`
	NewPlan        *RatePlanSpec      `json:"new_plan" validate:"required"`
	PremiumPlan    *RatePlanSpec      `json:"premium_plan,omitempty"`
	MigrationRates map[string]float64 `json:"migration_rates" validate:"required,dive,gte=0,lte=1"`
	WinbackRate    *float64           `json:"winback_rate" validate:"required,gte=0,lte=1"`
	Results        *SimulationResult  `json:"results" validate:"required"`
	CreatedAt      *time.Time         `json:"created_at,omitempty"`
}

func (in ScenarioInput) Validate() error {
	return validateStruct("scenario", in)
}

// Scenario validates the input and turns it into a SimulationScenario.
func (in ScenarioInput) Scenario(now time.Time) (SimulationScenario, error) {
	if err := in.Validate(); err != nil {
		return SimulationScenario{}, err
	}
	id := in.ScenarioID
	if id == "" {
		id = NewScenarioID()
	}
	createdAt := now
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		createdAt = *in.CreatedAt
	}
	rates := make(map[string]float64, len(in.MigrationRates))
	for k, v := range in.MigrationRates {
		rates[k] = v
	}
	s := SimulationScenario{
		ScenarioID:     id,
		ScenarioType:   in.ScenarioType,
		NewPlan:        *in.NewPlan,
		PremiumPlan:    in.PremiumPlan,
		MigrationRates: rates,
		WinbackRate:    *in.WinbackRate,
		Results:        *in.Results,
		CreatedAt:      createdAt,
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return SimulationScenario{}, err
	}
	return s, nil
}

// DecodeScenarioInput decodes a JSON document into a ScenarioInput. Unknown
// keys are rejected.
func DecodeScenarioInput(data []byte) (ScenarioInput, error) {
	var in ScenarioInput
	if err := decodeStrict(data, &in); err != nil {
		return ScenarioInput{}, err
	}
	return in, nil
}
