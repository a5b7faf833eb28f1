package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

const (
	upsertScenarioSQL = `
		INSERT INTO simulation_scenarios (
			scenario_id, scenario_type, new_plan_name, new_plan_fee,
			winback_rate, arpu_change_pct, annual_revenue_impact,
			new_plan_json, premium_plan_json, migration_rates_json, results_json, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (scenario_id)
		DO UPDATE SET
			scenario_type = EXCLUDED.scenario_type,
			new_plan_name = EXCLUDED.new_plan_name,
			new_plan_fee = EXCLUDED.new_plan_fee,
			winback_rate = EXCLUDED.winback_rate,
			arpu_change_pct = EXCLUDED.arpu_change_pct,
			annual_revenue_impact = EXCLUDED.annual_revenue_impact,
			new_plan_json = EXCLUDED.new_plan_json,
			premium_plan_json = EXCLUDED.premium_plan_json,
			migration_rates_json = EXCLUDED.migration_rates_json,
			results_json = EXCLUDED.results_json,
			created_at = EXCLUDED.created_at`

	listScenariosSQL = `
		SELECT scenario_id, scenario_type, new_plan_name, new_plan_fee,
			winback_rate, arpu_change_pct, annual_revenue_impact, created_at
		FROM simulation_scenarios
		ORDER BY created_at DESC`

	getScenarioSQL = `
		SELECT scenario_id, scenario_type, winback_rate,
			new_plan_json, premium_plan_json, migration_rates_json, results_json, created_at
		FROM simulation_scenarios
		WHERE scenario_id = $1`

	deleteScenarioSQL = `DELETE FROM simulation_scenarios WHERE scenario_id = $1`
)

// PostgresScenarios is the Postgres ScenarioRepository.
type PostgresScenarios struct {
	db      DB
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// scenarioBlobs holds the JSONB columns of a scenario row.
type scenarioBlobs struct {
	newPlan, premiumPlan, rates, results []byte
}

func encodeScenario(s models.SimulationScenario) (scenarioBlobs, error) {
	var b scenarioBlobs
	var err error
	if b.newPlan, err = json.Marshal(s.NewPlan); err != nil {
		return b, fmt.Errorf("failed to marshal new plan: %w", err)
	}
	if s.PremiumPlan != nil {
		if b.premiumPlan, err = json.Marshal(s.PremiumPlan); err != nil {
			return b, fmt.Errorf("failed to marshal premium plan: %w", err)
		}
	}
	if b.rates, err = json.Marshal(s.MigrationRates); err != nil {
		return b, fmt.Errorf("failed to marshal migration rates: %w", err)
	}
	if b.results, err = json.Marshal(s.Results); err != nil {
		return b, fmt.Errorf("failed to marshal results: %w", err)
	}
	return b, nil
}

func decodeScenario(id string, scenarioType models.ScenarioType, winback float64, b scenarioBlobs, createdAt time.Time) (models.SimulationScenario, error) {
	s := models.SimulationScenario{
		ScenarioID:   id,
		ScenarioType: scenarioType,
		WinbackRate:  winback,
		CreatedAt:    createdAt,
	}
	if err := json.Unmarshal(b.newPlan, &s.NewPlan); err != nil {
		return s, fmt.Errorf("failed to unmarshal new plan of %s: %w", id, err)
	}
	if len(b.premiumPlan) > 0 && string(b.premiumPlan) != "null" {
		var premium models.RatePlanSpec
		if err := json.Unmarshal(b.premiumPlan, &premium); err != nil {
			return s, fmt.Errorf("failed to unmarshal premium plan of %s: %w", id, err)
		}
		s.PremiumPlan = &premium
	}
	if err := json.Unmarshal(b.rates, &s.MigrationRates); err != nil {
		return s, fmt.Errorf("failed to unmarshal migration rates of %s: %w", id, err)
	}
	if err := json.Unmarshal(b.results, &s.Results); err != nil {
		return s, fmt.Errorf("failed to unmarshal results of %s: %w", id, err)
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("stored scenario %s is invalid: %w", id, err)
	}
	return s, nil
}

// Save validates the input and upserts the scenario, returning its id.
func (r *PostgresScenarios) Save(ctx context.Context, in models.ScenarioInput) (string, error) {
	s, err := in.Scenario(r.now())
	if err != nil {
		return "", err
	}
	s.CreatedAt = s.CreatedAt.Truncate(time.Microsecond)

	blobs, err := encodeScenario(s)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertScenarioSQL,
			s.ScenarioID, string(s.ScenarioType), s.NewPlan.Name, s.NewPlan.MonthlyFee,
			s.WinbackRate, s.Results.ARPUChangePct, s.Results.AnnualRevenueImpact,
			blobs.newPlan, blobs.premiumPlan, blobs.rates, blobs.results, s.CreatedAt,
		)
		return err
	})
	if err != nil {
		r.log.Error("save scenario failed", zap.String("scenario_id", s.ScenarioID), zap.Error(err))
		return "", fmt.Errorf("failed to save scenario: %w", err)
	}
	return s.ScenarioID, nil
}

// List returns scenario summaries, newest first.
func (r *PostgresScenarios) List(ctx context.Context) ([]ScenarioSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, listScenariosSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	out := []ScenarioSummary{}
	for rows.Next() {
		var (
			s            ScenarioSummary
			scenarioType string
		)
		if err := rows.Scan(
			&s.ScenarioID, &scenarioType, &s.NewPlanName, &s.NewPlanFee,
			&s.WinbackRate, &s.ARPUChangePct, &s.AnnualRevenueImpact, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		s.ScenarioType = models.ScenarioType(scenarioType)
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return out, nil
}

// Get returns the full scenario, or nil when the id is unknown.
func (r *PostgresScenarios) Get(ctx context.Context, id string) (*models.SimulationScenario, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		scenarioID, scenarioType string
		winback                  float64
		blobs                    scenarioBlobs
		createdAt                time.Time
	)
	err := r.db.QueryRow(ctx, getScenarioSQL, id).Scan(
		&scenarioID, &scenarioType, &winback,
		&blobs.newPlan, &blobs.premiumPlan, &blobs.rates, &blobs.results, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load scenario %s: %w", id, err)
	}

	s, err := decodeScenario(scenarioID, models.ScenarioType(scenarioType), winback, blobs, createdAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes the scenario and reports whether it existed.
func (r *PostgresScenarios) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var deleted bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteScenarioSQL, id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		r.log.Error("delete scenario failed", zap.String("scenario_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete scenario: %w", err)
	}
	return deleted, nil
}
