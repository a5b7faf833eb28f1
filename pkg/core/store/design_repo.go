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
	upsertDesignSQL = `
		INSERT INTO plan_designs (
			design_id, manufacturer, term_months, discount_type,
			rate_plan_json, benefit_json, memo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (design_id)
		DO UPDATE SET
			manufacturer = EXCLUDED.manufacturer,
			term_months = EXCLUDED.term_months,
			discount_type = EXCLUDED.discount_type,
			rate_plan_json = EXCLUDED.rate_plan_json,
			benefit_json = EXCLUDED.benefit_json,
			memo = EXCLUDED.memo,
			created_at = EXCLUDED.created_at`

	listDesignsSQL = `
		SELECT design_id, manufacturer, term_months, discount_type, created_at, COALESCE(memo, '')
		FROM plan_designs
		ORDER BY created_at DESC`

	getDesignSQL = `
		SELECT design_id, manufacturer, term_months, discount_type,
			rate_plan_json, benefit_json, COALESCE(memo, ''), created_at
		FROM plan_designs
		WHERE design_id = $1`

	deleteDesignSQL = `DELETE FROM plan_designs WHERE design_id = $1`
)

// PostgresDesigns is the Postgres DesignRepository.
type PostgresDesigns struct {
	db      DB
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// Save validates the input and upserts the design, returning its id.
func (r *PostgresDesigns) Save(ctx context.Context, in models.DesignInput) (string, error) {
	d, err := in.Design(r.now())
	if err != nil {
		return "", err
	}
	d.CreatedAt = d.CreatedAt.Truncate(time.Microsecond)

	planJSON, err := json.Marshal(d.RatePlan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rate plan: %w", err)
	}
	benefitJSON, err := json.Marshal(d.Benefit)
	if err != nil {
		return "", fmt.Errorf("failed to marshal benefit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertDesignSQL,
			d.DesignID, d.Manufacturer, d.TermMonths, d.DiscountType,
			planJSON, benefitJSON, nullable(d.Memo), d.CreatedAt,
		)
		return err
	})
	if err != nil {
		r.log.Error("save design failed", zap.String("design_id", d.DesignID), zap.Error(err))
		return "", fmt.Errorf("failed to save design: %w", err)
	}
	return d.DesignID, nil
}

// List returns design summaries, newest first.
func (r *PostgresDesigns) List(ctx context.Context) ([]DesignSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, listDesignsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	out := []DesignSummary{}
	for rows.Next() {
		var s DesignSummary
		if err := rows.Scan(&s.DesignID, &s.Manufacturer, &s.TermMonths, &s.DiscountType, &s.CreatedAt, &s.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return out, nil
}

// Get returns the full design, or nil when the id is unknown.
func (r *PostgresDesigns) Get(ctx context.Context, id string) (*models.PlanDesign, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		designID, manufacturer, discountType, memo string
		termMonths                                 int
		planJSON, benefitJSON                      []byte
		createdAt                                  time.Time
	)
	err := r.db.QueryRow(ctx, getDesignSQL, id).Scan(
		&designID, &manufacturer, &termMonths, &discountType,
		&planJSON, &benefitJSON, &memo, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load design %s: %w", id, err)
	}

	var plan models.RatePlan
	if err := json.Unmarshal(planJSON, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate plan of %s: %w", id, err)
	}
	var benefit models.Benefit
	if err := json.Unmarshal(benefitJSON, &benefit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal benefit of %s: %w", id, err)
	}

	d, err := models.NewPlanDesign(designID, manufacturer, plan, benefit, termMonths, discountType, createdAt, memo)
	if err != nil {
		return nil, fmt.Errorf("stored design %s is invalid: %w", id, err)
	}
	return &d, nil
}

// Delete removes the design and reports whether it existed.
func (r *PostgresDesigns) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var deleted bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteDesignSQL, id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		r.log.Error("delete design failed", zap.String("design_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete design: %w", err)
	}
	return deleted, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
