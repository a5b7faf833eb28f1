// Package simulation exposes the estimators, the simulator and the scenario
// runner over HTTP.
package simulation

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/api/respond"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/ingest"
	sim "github.com/nan702ya/skt-ai-adoption-plan/pkg/core/simulation"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/store"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// Handler serves the estimators and the simulation runs. Store may be nil
// when scenarios are never saved.
type Handler struct {
	Store    *store.Store
	Defaults config.SimulationConfig
	Logger   *zap.Logger
	Now      func() time.Time
}

// Register mounts the routes under /api/simulation.
func (h *Handler) Register(r *gin.Engine) {
	group := r.Group("/api/simulation")
	group.POST("/migration-rates", h.migrationRates)
	group.POST("/winback", h.winback)
	group.POST("/run", h.run)
	group.POST("/scenarios", h.scenarios)
	group.POST("/compare", h.compare)
	group.POST("/current-plans", h.currentPlans)
}

type migrationRatesRequest struct {
	CurrentPlans []models.CurrentPlan `json:"current_plans"`
	NewPlan      models.RatePlanSpec  `json:"new_plan"`
	ScenarioType models.ScenarioType  `json:"scenario_type"`
}

func (h *Handler) migrationRates(c *gin.Context) {
	var req migrationRatesRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if req.ScenarioType == "" {
		req.ScenarioType = models.ScenarioBase
	}
	if err := validatePlans(req.NewPlan, req.CurrentPlans, req.ScenarioType); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	rates := sim.EstimateMigrationRates(req.CurrentPlans, req.NewPlan.Normalize(), req.ScenarioType)
	respond.Ok(c, gin.H{"migration_rates": rates}, gin.H{"scenario_type": req.ScenarioType})
}

type winbackRequest struct {
	NewPlan   models.RatePlanSpec `json:"new_plan"`
	Benchmark *sim.Benchmark      `json:"benchmark,omitempty"`
}

func (h *Handler) winback(c *gin.Context) {
	var req winbackRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if err := req.NewPlan.Normalize().Validate(); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	bench := h.benchmark(req.Benchmark)
	rate := sim.EstimateWinback(req.NewPlan, &bench)
	respond.Ok(c, gin.H{"winback_rate": rate}, gin.H{"benchmark": bench})
}

// runRequest simulates one scenario. Migration and win-back rates are
// estimated when omitted.
type runRequest struct {
	ScenarioType     models.ScenarioType  `json:"scenario_type"`
	NewPlan          models.RatePlanSpec  `json:"new_plan"`
	MigrationRates   map[string]float64   `json:"migration_rates,omitempty"`
	WinbackRate      *float64             `json:"winback_rate,omitempty"`
	CurrentPlans     []models.CurrentPlan `json:"current_plans"`
	TotalSubscribers int64                `json:"total_subscribers,omitempty"`
	AvgARPU          float64              `json:"avg_arpu,omitempty"`
	Benchmark        *sim.Benchmark       `json:"benchmark,omitempty"`
}

func (h *Handler) run(c *gin.Context) {
	var req runRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if req.ScenarioType == "" {
		req.ScenarioType = models.ScenarioBase
	}
	if err := validatePlans(req.NewPlan, req.CurrentPlans, req.ScenarioType); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if err := validateRates(req.MigrationRates, req.WinbackRate); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	newPlan := req.NewPlan.Normalize()

	rates := req.MigrationRates
	if rates == nil {
		rates = sim.EstimateMigrationRates(req.CurrentPlans, newPlan, req.ScenarioType)
	}
	var winback float64
	if req.WinbackRate != nil {
		winback = *req.WinbackRate
	} else {
		bench := h.benchmark(req.Benchmark)
		winback = sim.EstimateWinback(newPlan, &bench)
	}

	total, arpu := h.base(req.TotalSubscribers, req.AvgARPU)
	outcome := sim.SimulateDetailed(sim.Input{
		ScenarioType:   req.ScenarioType,
		NewPlan:        newPlan,
		MigrationRates: rates,
		WinbackRate:    winback,
	}, req.CurrentPlans, total, arpu)
	respond.Ok(c, outcome, gin.H{
		"total_subscribers": total,
		"avg_arpu":          arpu,
		"migration_rates":   rates,
		"winback_rate":      winback,
	})
}

type scenariosRequest struct {
	sim.RunRequest
	Save bool `json:"save,omitempty"`
}

type scenariosResponse struct {
	Runs        []sim.ScenarioRun `json:"runs"`
	Comparison  sim.Comparison    `json:"comparison"`
	ScenarioIDs []string          `json:"scenario_ids,omitempty"`
}

func (h *Handler) scenarios(c *gin.Context) {
	var req scenariosRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	runReq := req.RunRequest
	runReq.TotalSubscribers, runReq.AvgARPU = h.base(runReq.TotalSubscribers, runReq.AvgARPU)
	bench := h.benchmark(runReq.Benchmark)
	runReq.Benchmark = &bench

	runs, err := sim.RunScenarios(runReq, h.now())
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	resp := scenariosResponse{Runs: runs, Comparison: sim.Compare(sim.Scenarios(runs))}
	if req.Save {
		if h.Store == nil {
			respond.Error(c, http.StatusServiceUnavailable, "store unavailable", nil)
			return
		}
		ids, err := h.Store.SaveScenarios(c.Request.Context(), sim.Scenarios(runs))
		if err != nil {
			respond.Fail(c, h.Logger, err)
			return
		}
		resp.ScenarioIDs = ids
	}
	respond.Ok(c, resp, nil)
}

type compareRequest struct {
	ScenarioIDs []string `json:"scenario_ids"`
}

func (h *Handler) compare(c *gin.Context) {
	if h.Store == nil {
		respond.Error(c, http.StatusServiceUnavailable, "store unavailable", nil)
		return
	}
	var req compareRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if len(req.ScenarioIDs) == 0 {
		respond.Error(c, http.StatusBadRequest, "scenario_ids required", nil)
		return
	}
	found, missing, err := h.Store.GetScenarios(c.Request.Context(), req.ScenarioIDs)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if len(missing) > 0 {
		respond.Error(c, http.StatusNotFound, "scenario not found", gin.H{"missing": missing})
		return
	}
	respond.Ok(c, sim.Compare(found), nil)
}

// currentPlans parses an uploaded spreadsheet (form field "file") into the
// current plan line-up.
func (h *Handler) currentPlans(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "file required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	defer f.Close()

	plans, err := ingest.ParseWorkbookReader(f)
	if err != nil {
		meta := gin.H{"filename": fh.Filename}
		var missing *ingest.MissingColumnsError
		if errors.As(err, &missing) {
			meta["missing_columns"] = missing.Columns
		}
		respond.Error(c, http.StatusBadRequest, err.Error(), meta)
		return
	}
	respond.Ok(c, gin.H{"current_plans": plans}, gin.H{"total": len(plans)})
}

func validatePlans(newPlan models.RatePlanSpec, current []models.CurrentPlan, t models.ScenarioType) error {
	req := sim.RunRequest{NewPlan: newPlan, CurrentPlans: current, Types: []models.ScenarioType{t}}
	return req.WithDefaults().Validate()
}

func validateRates(rates map[string]float64, winback *float64) error {
	for name, r := range rates {
		if !(r >= 0 && r <= 1) {
			return fmt.Errorf("%w: migration rate of %q out of [0, 1]", sim.ErrInvalidInput, name)
		}
	}
	if winback != nil && !(*winback >= 0 && *winback <= 1) {
		return fmt.Errorf("%w: winback rate out of [0, 1]", sim.ErrInvalidInput)
	}
	return nil
}

// benchmark fills a missing benchmark from configuration.
func (h *Handler) benchmark(b *sim.Benchmark) sim.Benchmark {
	if b != nil {
		return *b
	}
	d := h.Defaults.Benchmark
	if d.Price == 0 && d.QualityPremium == 0 {
		return sim.DefaultBenchmark()
	}
	return sim.Benchmark{Price: d.Price, QualityPremium: d.QualityPremium, DataGB: d.DataGB}
}

// base fills zero subscriber totals and ARPU from configuration, then from
// the package defaults.
func (h *Handler) base(total int64, arpu float64) (int64, float64) {
	if total <= 0 {
		total = h.Defaults.TotalSubscribers
	}
	if total <= 0 {
		total = sim.DefaultTotalSubscribers
	}
	if arpu <= 0 {
		arpu = h.Defaults.AvgARPU
	}
	if arpu <= 0 {
		arpu = sim.DefaultAvgARPU
	}
	return total, arpu
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
