package handler

import (
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// WeeklyHandler serves the weekly activity summary
type WeeklyHandler struct {
	weeklyService *service.WeeklyService
}

// NewWeeklyHandler creates a new WeeklyHandler
func NewWeeklyHandler(weeklyService *service.WeeklyService) *WeeklyHandler {
	return &WeeklyHandler{
		weeklyService: weeklyService,
	}
}

// GetWeeklyActivity handles the trailing 7-day summary of a user
// GET /weekly-activity/:user_id/
func (h *WeeklyHandler) GetWeeklyActivity(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	summary, err := h.weeklyService.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, summary)
}

// RegisterRoutes registers weekly summary routes
func (h *WeeklyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/weekly-activity/:user_id/", h.GetWeeklyActivity)
}
