// Package storage exposes the design and scenario stores and their reports.
package storage

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/api/respond"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/report"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/store"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

// Handler serves the design and scenario stores.
type Handler struct {
	Store  *store.Store
	Logger *zap.Logger
}

// Register mounts the design, scenario and report routes.
func (h *Handler) Register(r *gin.Engine) {
	designs := r.Group("/api/designs")
	designs.POST("", h.saveDesign)
	designs.GET("", h.listDesigns)
	designs.GET("/:id", h.getDesign)
	designs.DELETE("/:id", h.deleteDesign)
	designs.GET("/:id/report", h.designReport)

	scenarios := r.Group("/api/scenarios")
	scenarios.POST("", h.saveScenario)
	scenarios.GET("", h.listScenarios)
	scenarios.GET("/:id", h.getScenario)
	scenarios.DELETE("/:id", h.deleteScenario)

	r.GET("/api/reports/scenarios", h.scenarioReport)
}

func (h *Handler) saveDesign(c *gin.Context) {
	body, err := respond.Body(c)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	in, err := models.DecodeDesignInput(body)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	id, err := h.Store.Designs.Save(c.Request.Context(), in)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, gin.H{"design_id": id}, nil)
}

func (h *Handler) listDesigns(c *gin.Context) {
	items, err := h.Store.Designs.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, items, gin.H{"total": len(items)})
}

func (h *Handler) getDesign(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	d, err := h.Store.Designs.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if d == nil {
		respond.NotFound(c, "design", id)
		return
	}
	respond.Ok(c, d, nil)
}

func (h *Handler) deleteDesign(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	ok, err := h.Store.Designs.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if !ok {
		respond.NotFound(c, "design", id)
		return
	}
	respond.Ok(c, gin.H{"deleted": true}, nil)
}

func (h *Handler) designReport(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	d, err := h.Store.Designs.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if d == nil {
		respond.NotFound(c, "design", id)
		return
	}
	h.writeReport(c, d.RatePlan.Name, report.Design(*d))
}

func (h *Handler) saveScenario(c *gin.Context) {
	body, err := respond.Body(c)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	in, err := models.DecodeScenarioInput(body)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	id, err := h.Store.Scenarios.Save(c.Request.Context(), in)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, gin.H{"scenario_id": id}, nil)
}

func (h *Handler) listScenarios(c *gin.Context) {
	items, err := h.Store.Scenarios.List(c.Request.Context())
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, items, gin.H{"total": len(items)})
}

func (h *Handler) getScenario(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	s, err := h.Store.Scenarios.Get(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if s == nil {
		respond.NotFound(c, "scenario", id)
		return
	}
	respond.Ok(c, s, nil)
}

func (h *Handler) deleteScenario(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	ok, err := h.Store.Scenarios.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if !ok {
		respond.NotFound(c, "scenario", id)
		return
	}
	respond.Ok(c, gin.H{"deleted": true}, nil)
}

// scenarioReport renders stored scenarios side by side. ids is a comma
// separated list.
func (h *Handler) scenarioReport(c *gin.Context) {
	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		respond.Error(c, http.StatusBadRequest, "ids required", nil)
		return
	}
	found, missing, err := h.Store.GetScenarios(c.Request.Context(), ids)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if len(missing) > 0 {
		respond.Error(c, http.StatusNotFound, "scenario not found", gin.H{"missing": missing})
		return
	}
	title := c.DefaultQuery("title", report.DefaultTitle)
	r := report.Simulation{Title: title, Scenarios: found, Notes: c.Query("notes")}
	h.writeReport(c, title, r.Markdown())
}

// writeReport answers with Markdown, or with an HTML page for format=html.
func (h *Handler) writeReport(c *gin.Context, title, markdown string) {
	if c.Query("format") != "html" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
		return
	}
	page, err := report.HTML(title, markdown)
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
