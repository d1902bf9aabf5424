package handler

import (
	"strings"

	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// ManualEntryHandler handles manual entry API requests
type ManualEntryHandler struct {
	entryService *service.ManualEntryService
}

// NewManualEntryHandler creates a new ManualEntryHandler
func NewManualEntryHandler(entryService *service.ManualEntryService) *ManualEntryHandler {
	return &ManualEntryHandler{
		entryService: entryService,
	}
}

// ListEntries handles listing manual entries with optional user_id, date,
// start_date, end_date and activity filters
// GET /manual-entry/
func (h *ManualEntryHandler) ListEntries(c *gin.Context) {
	f, ok := parseQueryFilters(c)
	if !ok {
		return
	}

	filter := repository.ManualEntryFilter{
		UserID: f.UserID,
		Date:   f.Date,
		From:   f.From,
		To:     f.To,
	}
	if activity := strings.TrimSpace(c.Query("activity")); activity != "" {
		filter.Activity = &activity
	}

	entries, err := h.entryService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, entries)
}

// CreateEntry handles manual entry creation
// POST /manual-entry/
func (h *ManualEntryHandler) CreateEntry(c *gin.Context) {
	var req service.CreateManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, err := h.entryService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, entry)
}

// GetEntry handles getting a single manual entry
// GET /manual-entry/:id/
func (h *ManualEntryHandler) GetEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.entryService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, entry)
}

// PatchEntry handles a partial manual entry update
// PATCH /manual-entry/:id/
func (h *ManualEntryHandler) PatchEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, err := h.entryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, entry)
}

// ReplaceEntry handles a full manual entry update
// PUT /manual-entry/:id/
func (h *ManualEntryHandler) ReplaceEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.CreateManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	entry, err := h.entryService.Replace(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, entry)
}

// DeleteEntry handles deleting a manual entry
// DELETE /manual-entry/:id/
func (h *ManualEntryHandler) DeleteEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// ListUserEntries handles listing the manual entries of one user
// GET /manual-entry/user/:user_id/
func (h *ManualEntryHandler) ListUserEntries(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	entries, err := h.entryService.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, entries)
}

// RegisterRoutes registers manual entry routes
func (h *ManualEntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/manual-entry")
	{
		entries.GET("/", h.ListEntries)
		entries.POST("/", h.CreateEntry)
		entries.GET("/:id/", h.GetEntry)
		entries.PATCH("/:id/", h.PatchEntry)
		entries.PUT("/:id/", h.ReplaceEntry)
		entries.DELETE("/:id/", h.DeleteEntry)
		entries.GET("/user/:user_id/", h.ListUserEntries)
	}
}
