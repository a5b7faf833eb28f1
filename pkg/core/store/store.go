// Package store persists plan designs and simulation scenarios.
//
// Records are validated before anything is written. Nested fields are kept
// as JSONB blobs next to indexed scalar columns; listings read the scalar
// columns only. Saving with an existing identifier replaces the record.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/logger"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// DefaultQueryTimeout bounds every store operation when the configuration
// does not set one.
const DefaultQueryTimeout = 5 * time.Second

// ValidationError lists every missing or invalid field of a rejected record.
type ValidationError = models.ValidationError

// DesignSummary is the listing form of a design.
type DesignSummary struct {
	DesignID     string    `json:"design_id"`
	Manufacturer string    `json:"manufacturer"`
	TermMonths   int       `json:"term_months"`
	DiscountType string    `json:"discount_type"`
	CreatedAt    time.Time `json:"created_at"`
	Memo         string    `json:"memo,omitempty"`
}

// ScenarioSummary is the listing form of a scenario.
type ScenarioSummary struct {
	ScenarioID          string              `json:"scenario_id"`
	ScenarioType        models.ScenarioType `json:"scenario_type"`
	NewPlanName         string              `json:"new_plan_name"`
	NewPlanFee          int64               `json:"new_plan_fee"`
	WinbackRate         float64             `json:"winback_rate"`
	ARPUChangePct       float64             `json:"arpu_change_pct"`
	AnnualRevenueImpact int64               `json:"annual_revenue_impact"`
	CreatedAt           time.Time           `json:"created_at"`
}

// DesignRepository stores plan designs. Get returns (nil, nil) for an
// unknown id and Delete reports whether a record was removed.
type DesignRepository interface {
	Save(ctx context.Context, in models.DesignInput) (string, error)
	List(ctx context.Context) ([]DesignSummary, error)
	Get(ctx context.Context, id string) (*models.PlanDesign, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ScenarioRepository stores simulation scenarios with the same contract as
// DesignRepository.
type ScenarioRepository interface {
	Save(ctx context.Context, in models.ScenarioInput) (string, error)
	List(ctx context.Context) ([]ScenarioSummary, error)
	Get(ctx context.Context, id string) (*models.SimulationScenario, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Store groups the repositories over one backend.
type Store struct {
	Designs   DesignRepository
	Scenarios ScenarioRepository

	pool *pgxpool.Pool
	log  *zap.Logger
}

// Open connects to Postgres, applies pending migrations when configured to
// and returns a Postgres-backed store.
func Open(ctx context.Context, cfg config.DBConfig, log *zap.Logger) (*Store, error) {
	log = logger.OrNop(log).Named("store")

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := Migrate(cfg.DSN, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	s := NewPostgres(pool, cfg.QueryTimeout, log)
	s.pool = pool
	return s, nil
}

// NewPostgres builds a store over an existing connection (pool or mock).
// Migrations are not run.
func NewPostgres(db DB, timeout time.Duration, log *zap.Logger) *Store {
	log = logger.OrNop(log)
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Store{
		Designs:   &PostgresDesigns{db: db, timeout: timeout, log: log, now: time.Now},
		Scenarios: &PostgresScenarios{db: db, timeout: timeout, log: log, now: time.Now},
		log:       log,
	}
}

// NewMemory returns a store that keeps records in process memory.
func NewMemory() *Store {
	return &Store{
		Designs:   NewMemoryDesigns(),
		Scenarios: NewMemoryScenarios(),
		log:       zap.NewNop(),
	}
}

// Ping checks the database connection. A memory store is always ready.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close releases the connection pool, if any.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveScenarios saves a batch of scenarios and returns their identifiers in
// order. It stops at the first failure.
func (s *Store) SaveScenarios(ctx context.Context, scenarios []models.SimulationScenario) ([]string, error) {
	ids := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		id, err := s.Scenarios.Save(ctx, sc.Input())
		if err != nil {
			return ids, fmt.Errorf("failed to save %s scenario: %w", sc.ScenarioType, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetScenarios loads the given scenarios, skipping unknown ids. It returns
// the ids that were not found.
func (s *Store) GetScenarios(ctx context.Context, ids []string) ([]models.SimulationScenario, []string, error) {
	var found []models.SimulationScenario
	var missing []string
	for _, id := range ids {
		sc, err := s.Scenarios.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if sc == nil {
			missing = append(missing, id)
			continue
		}
		found = append(found, *sc)
	}
	return found, missing, nil
}
