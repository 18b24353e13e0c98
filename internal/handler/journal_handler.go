package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trade-journal/internal/journal"
	"github.com/trade-journal/internal/middleware"
	"github.com/trade-journal/internal/models"
	"github.com/trade-journal/internal/service"
	"github.com/trade-journal/pkg/response"
)

// JournalHandler handles journal entry API requests
type JournalHandler struct {
	journalService *service.JournalService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journalService *service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

// Create adds a new journal entry
// POST /api/v1/journal
func (h *JournalHandler) Create(c *gin.Context) {
	var req service.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.journalService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, entry)
}

// List returns entries matching the query filters
// GET /api/v1/journal?pair=&type=&outcome=&status=&tag=&session=&from=&to=&sortBy=
func (h *JournalHandler) List(c *gin.Context) {
	filter, order, err := parseFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entries, err := h.journalService.List(c.Request.Context(), middleware.GetUserID(c), filter, order)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// Get returns a single entry
// GET /api/v1/journal/:id
func (h *JournalHandler) Get(c *gin.Context) {
	entry, err := h.journalService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, entry)
}

// Update replaces an entry
// PUT /api/v1/journal/:id
func (h *JournalHandler) Update(c *gin.Context) {
	var req service.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.journalService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, entry)
}

// Delete removes an entry
// DELETE /api/v1/journal/:id
func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.journalService.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": c.Param("id")})
}

// MarkTaken transitions a planned entry to a taken trade
// POST /api/v1/journal/:id/take
func (h *JournalHandler) MarkTaken(c *gin.Context) {
	var req service.TakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.journalService.MarkTaken(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, entry)
}

// Meta returns the static form vocabularies
// GET /api/v1/journal/meta
func (h *JournalHandler) Meta(c *gin.Context) {
	response.Success(c, gin.H{
		"pairs": models.CommonPairs,
		"types": []models.TradeType{models.TradeTypeBuy, models.TradeTypeSell},
		"moods": models.Moods,
		"statuses": []models.TradeStatus{
			models.TradeStatusTaken,
			models.TradeStatusPlanned,
			models.TradeStatusDiscarded,
		},
	})
}

// RegisterRoutes registers journal routes
func (h *JournalHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	j := rg.Group("/journal", authMiddleware)
	{
		j.GET("", h.List)
		j.POST("", h.Create)
		j.GET("/meta", h.Meta)
		j.GET("/:id", h.Get)
		j.PUT("/:id", h.Update)
		j.DELETE("/:id", h.Delete)
		j.POST("/:id/take", h.MarkTaken)
	}
}

func (h *JournalHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, "journal entry not found")
	case errors.Is(err, service.ErrInvalidEntry), errors.Is(err, service.ErrNotPlanned):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// parseFilter maps query parameters onto a journal filter. Absent
// parameters impose no constraint.
func parseFilter(c *gin.Context) (journal.Filter, journal.Sort, error) {
	filter := journal.Filter{
		Pair:    c.Query("pair"),
		Type:    models.TradeType(c.Query("type")),
		Outcome: c.Query("outcome"),
		Status:  models.TradeStatus(c.Query("status")),
		Tag:     c.Query("tag"),
		Session: c.Query("session"),
	}

	if v := c.Query("from"); v != "" {
		t, _, err := parseDateParam(v)
		if err != nil {
			return filter, "", fmt.Errorf("invalid from date: %w", err)
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, dateOnly, err := parseDateParam(v)
		if err != nil {
			return filter, "", fmt.Errorf("invalid to date: %w", err)
		}
		if dateOnly {
			// A bare date as the upper bound means the whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &t
	}

	order := journal.Sort(c.DefaultQuery("sortBy", string(journal.SortDateDesc)))
	if order != journal.SortDateAsc && order != journal.SortDateDesc {
		return filter, "", fmt.Errorf("invalid sortBy %q", order)
	}
	return filter, order, nil
}

func parseDateParam(v string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	if t, err = time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, err
}
