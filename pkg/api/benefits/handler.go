// Package benefits serves the acquired benefit and plan records and the
// benefit extension calculator.
package benefits

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/api/respond"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/benefit"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/calc"
)

// Handler serves benefit lookups and the extension cost calculator.
type Handler struct {
	Fetcher *benefit.Fetcher
	Logger  *zap.Logger
}

// Register mounts the benefit, plan and calculator routes.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/api/benefits", h.benefits)
	r.GET("/api/plans/tworld", h.tworldPlans)

	group := r.Group("/api/calc")
	group.POST("/extension", h.extension)
	group.POST("/compare", h.compare)
	group.POST("/savings", h.savings)
}

func (h *Handler) benefits(c *gin.Context) {
	records, err := h.Fetcher.Benefits(c.Request.Context(), c.Query("manufacturer"))
	if errors.Is(err, benefit.ErrUnknownManufacturer) {
		respond.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, records, gin.H{"total": len(records)})
}

func (h *Handler) tworldPlans(c *gin.Context) {
	plans := h.Fetcher.TWorldPlans(c.Request.Context())
	respond.Ok(c, plans, gin.H{"total": len(plans)})
}

type extensionRequest struct {
	MonthlyPrice int64 `json:"monthly_price"`
	FreeMonths   int   `json:"free_months"`
	TermMonths   int   `json:"term_months"`
}

func (h *Handler) extension(c *gin.Context) {
	var req extensionRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	if req.MonthlyPrice < 0 || req.FreeMonths < 0 || req.TermMonths <= 0 {
		respond.Error(c, http.StatusBadRequest, "monthly_price and free_months must be >= 0, term_months > 0", nil)
		return
	}
	respond.Ok(c, calc.CalculateExtensionCost(req.MonthlyPrice, req.FreeMonths, req.TermMonths), nil)
}

type compareRequest struct {
	ExtensionTotal int64 `json:"extension_total"`
	ExistingTotal  int64 `json:"existing_total"`
}

func (h *Handler) compare(c *gin.Context) {
	var req compareRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, calc.CompareWithExisting(req.ExtensionTotal, req.ExistingTotal), nil)
}

type savingsRequest struct {
	ExistingTotal int64 `json:"existing_total"`
	ProposedTotal int64 `json:"proposed_total"`
}

func (h *Handler) savings(c *gin.Context) {
	var req savingsRequest
	if err := respond.Bind(c, &req); err != nil {
		respond.Fail(c, h.Logger, err)
		return
	}
	respond.Ok(c, calc.CalculateSavings(req.ExistingTotal, req.ProposedTotal), nil)
}
