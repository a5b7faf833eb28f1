package config

import (
	"github.com/gin-gonic/gin"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/api/respond"
	appconfig "github.com/nan702ya/skt-ai-adoption-plan/pkg/config"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// Response describes the defaults the simulation endpoints apply.
type Response struct {
	Env              string                    `json:"env"`
	Storage          string                    `json:"storage"`
	TotalSubscribers int64                     `json:"total_subscribers"`
	AvgARPU          float64                   `json:"avg_arpu"`
	Benchmark        appconfig.BenchmarkConfig `json:"benchmark"`
	ScenarioTypes    []models.ScenarioType     `json:"scenario_types"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config appconfig.Config
}

// Register mounts GET /api/config.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/api/config", h.config)
}

func (h *Handler) config(c *gin.Context) {
	storage := "memory"
	if h.Config.DB.DSN != "" {
		storage = "postgres"
	}
	respond.Ok(c, Response{
		Env:              h.Config.App.Env,
		Storage:          storage,
		TotalSubscribers: h.Config.Simulation.TotalSubscribers,
		AvgARPU:          h.Config.Simulation.AvgARPU,
		Benchmark:        h.Config.Simulation.Benchmark,
		ScenarioTypes:    models.ScenarioTypes,
	}, nil)
}
