package handler

import (
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// DailyActivityHandler handles daily activity API requests
type DailyActivityHandler struct {
	activityService *service.DailyActivityService
}

// NewDailyActivityHandler creates a new DailyActivityHandler
func NewDailyActivityHandler(activityService *service.DailyActivityService) *DailyActivityHandler {
	return &DailyActivityHandler{
		activityService: activityService,
	}
}

// ListActivities handles listing daily activities with optional
// user_id, date, start_date and end_date filters
// GET /daily-activity/
func (h *DailyActivityHandler) ListActivities(c *gin.Context) {
	f, ok := parseQueryFilters(c)
	if !ok {
		return
	}

	activities, err := h.activityService.List(repository.DailyActivityFilter{
		UserID: f.UserID,
		Date:   f.Date,
		From:   f.From,
		To:     f.To,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, activities)
}

// CreateActivity handles daily activity creation
// POST /daily-activity/
func (h *DailyActivityHandler) CreateActivity(c *gin.Context) {
	var req service.CreateDailyActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	activity, err := h.activityService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, activity)
}

// GetActivity handles getting a single daily activity
// GET /daily-activity/:id/
func (h *DailyActivityHandler) GetActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	activity, err := h.activityService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, activity)
}

// PatchActivity handles a partial daily activity update
// PATCH /daily-activity/:id/
func (h *DailyActivityHandler) PatchActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateDailyActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	activity, err := h.activityService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, activity)
}

// ReplaceActivity handles a full daily activity update
// PUT /daily-activity/:id/
func (h *DailyActivityHandler) ReplaceActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.CreateDailyActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	activity, err := h.activityService.Replace(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, activity)
}

// DeleteActivity handles deleting a daily activity
// DELETE /daily-activity/:id/ and DELETE /delete-activity/:id/
func (h *DailyActivityHandler) DeleteActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ListUserActivities handles listing the daily activities of one user
// GET /daily-activity/user/:user_id/
func (h *DailyActivityHandler) ListUserActivities(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	activities, err := h.activityService.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, activities)
}

// RegisterRoutes registers daily activity routes
func (h *DailyActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	activities := rg.Group("/daily-activity")
	{
		activities.GET("/", h.ListActivities)
		activities.POST("/", h.CreateActivity)
		activities.GET("/:id/", h.GetActivity)
		activities.PATCH("/:id/", h.PatchActivity)
		activities.PUT("/:id/", h.ReplaceActivity)
		activities.DELETE("/:id/", h.DeleteActivity)
		activities.GET("/user/:user_id/", h.ListUserActivities)
	}

	rg.DELETE("/delete-activity/:id/", h.DeleteActivity)
}
