package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// designRow pairs the listing columns with the serialized record, so List
// never decodes a blob.
type designRow struct {
	summary DesignSummary
	data    []byte
}

// MemoryDesigns is an in-process DesignRepository. Records are kept in
// serialized form so callers never share data with the store.
type MemoryDesigns struct {
	mu   sync.RWMutex
	rows map[string]designRow
	now  func() time.Time
}

func NewMemoryDesigns() *MemoryDesigns {
	return &MemoryDesigns{rows: map[string]designRow{}, now: time.Now}
}

func (m *MemoryDesigns) Save(_ context.Context, in models.DesignInput) (string, error) {
	d, err := in.Design(m.now())
	if err != nil {
		return "", err
	}
	d.CreatedAt = d.CreatedAt.Truncate(time.Microsecond)
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal design: %w", err)
	}

	row := designRow{
		summary: DesignSummary{
			DesignID:     d.DesignID,
			Manufacturer: d.Manufacturer,
			TermMonths:   d.TermMonths,
			DiscountType: d.DiscountType,
			CreatedAt:    d.CreatedAt,
			Memo:         d.Memo,
		},
		data: data,
	}

	m.mu.Lock()
	m.rows[d.DesignID] = row
	m.mu.Unlock()
	return d.DesignID, nil
}

func (m *MemoryDesigns) List(_ context.Context) ([]DesignSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]DesignSummary, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row.summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].DesignID, out[j].DesignID) })
	return out, nil
}

func (m *MemoryDesigns) Get(_ context.Context, id string) (*models.PlanDesign, error) {
	m.mu.RLock()
	row, ok := m.rows[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var d models.PlanDesign
	if err := json.Unmarshal(row.data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design %s: %w", id, err)
	}
	d, err := models.NewPlanDesign(d.DesignID, d.Manufacturer, d.RatePlan, d.Benefit, d.TermMonths, d.DiscountType, d.CreatedAt, d.Memo)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (m *MemoryDesigns) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

type scenarioRow struct {
	summary ScenarioSummary
	data    []byte
}

// MemoryScenarios is an in-process ScenarioRepository.
type MemoryScenarios struct {
	mu   sync.RWMutex
	rows map[string]scenarioRow
	now  func() time.Time
}

func NewMemoryScenarios() *MemoryScenarios {
	return &MemoryScenarios{rows: map[string]scenarioRow{}, now: time.Now}
}

func (m *MemoryScenarios) Save(_ context.Context, in models.ScenarioInput) (string, error) {
	s, err := in.Scenario(m.now())
	if err != nil {
		return "", err
	}
	s.CreatedAt = s.CreatedAt.Truncate(time.Microsecond)
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal scenario: %w", err)
	}

	row := scenarioRow{
		summary: ScenarioSummary{
			ScenarioID:          s.ScenarioID,
			ScenarioType:        s.ScenarioType,
			NewPlanName:         s.NewPlan.Name,
			NewPlanFee:          s.NewPlan.MonthlyFee,
			WinbackRate:         s.WinbackRate,
			ARPUChangePct:       s.Results.ARPUChangePct,
			AnnualRevenueImpact: s.Results.AnnualRevenueImpact,
			CreatedAt:           s.CreatedAt,
		},
		data: data,
	}

	m.mu.Lock()
	m.rows[s.ScenarioID] = row
	m.mu.Unlock()
	return s.ScenarioID, nil
}

func (m *MemoryScenarios) List(_ context.Context) ([]ScenarioSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ScenarioSummary, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row.summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ScenarioID, out[j].ScenarioID) })
	return out, nil
}

func (m *MemoryScenarios) Get(_ context.Context, id string) (*models.SimulationScenario, error) {
	m.mu.RLock()
	row, ok := m.rows[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var s models.SimulationScenario
	if err := json.Unmarshal(row.data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario %s: %w", id, err)
	}
	s = s.Normalize()
	return &s, nil
}

func (m *MemoryScenarios) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

// newerFirst orders by creation time descending, then by id for a stable
// listing.
func newerFirst(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA < idB
}
