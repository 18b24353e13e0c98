package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trade-journal/internal/service"
	"github.com/trade-journal/pkg/response"
)

// NewsHandler handles economic-calendar API requests
type NewsHandler struct {
	newsService *service.NewsService
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
	}
}

// Calendar returns today's high-impact events
// GET /api/v1/news/calendar
func (h *NewsHandler) Calendar(c *gin.Context) {
	response.Success(c, h.newsService.TodayHighImpact(c.Request.Context()))
}

// RegisterRoutes registers news routes
func (h *NewsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	news := rg.Group("/news")
	{
		news.GET("/calendar", h.Calendar)
	}
}
