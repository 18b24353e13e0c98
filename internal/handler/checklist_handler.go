package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/trade-journal/internal/confluence"
	"github.com/trade-journal/internal/middleware"
	"github.com/trade-journal/internal/service"
	"github.com/trade-journal/pkg/response"
)

// ChecklistHandler handles confluence checklist API requests
type ChecklistHandler struct {
	journalService *service.JournalService
}

// NewChecklistHandler creates a new ChecklistHandler
func NewChecklistHandler(journalService *service.JournalService) *ChecklistHandler {
	return &ChecklistHandler{
		journalService: journalService,
	}
}

// Config returns the static checklist configuration
// GET /api/v1/checklist/config
func (h *ChecklistHandler) Config(c *gin.Context) {
	response.Success(c, gin.H{
		"sections":    confluence.DefaultSections,
		"statusBands": confluence.DefaultStatusBands,
	})
}

// Score evaluates a checked-item set without persisting anything. The UI
// calls this on every toggle.
// POST /api/v1/checklist/score
func (h *ChecklistHandler) Score(c *gin.Context) {
	var req struct {
		Checked map[string]bool `json:"checked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	scorer := confluence.NewDefaultScorer()
	if err := scorer.Restore(req.Checked); err != nil {
		if errors.Is(err, confluence.ErrUnknownItem) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	sections, total := scorer.Scores()
	band := scorer.Status(total)

	response.Success(c, gin.H{
		"sections": sections,
		"total":    total,
		"status":   band,
		"details":  scorer.Details(),
	})
}

// Plan persists a planned trade carrying the checklist outcome
// POST /api/v1/checklist/plan
func (h *ChecklistHandler) Plan(c *gin.Context) {
	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.journalService.CreatePlan(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEntry) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Created(c, entry)
}

// RegisterRoutes registers checklist routes
func (h *ChecklistHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	cl := rg.Group("/checklist", authMiddleware)
	{
		cl.GET("/config", h.Config)
		cl.POST("/score", h.Score)
		cl.POST("/plan", h.Plan)
	}
}
