package handler

import (
	"errors"
	"strconv"

	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// pathID parses a numeric path parameter. A non-numeric value is treated as
// an unknown resource.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// respondError maps service and repository errors to HTTP responses
func respondError(c *gin.Context, err error) {
	var fields service.FieldErrors
	switch {
	case errors.As(err, &fields):
		response.FieldErrors(c, fields)
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrDailyActivityNotFound),
		errors.Is(err, repository.ErrManualEntryNotFound):
		response.NotFound(c)
	default:
		_ = c.Error(err)
		response.InternalError(c, "internal server error")
	}
}

// queryFilters reads the optional list filters shared by the activity endpoints
type queryFilters struct {
	UserID *uint
	Date   *models.Date
	From   *models.Date
	To     *models.Date
}

func parseQueryFilters(c *gin.Context) (queryFilters, bool) {
	var f queryFilters
	problems := service.FieldErrors{}

	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			problems.Add("user_id", "A valid integer is required.")
		} else {
			uid := uint(id)
			f.UserID = &uid
		}
	}

	dates := []struct {
		key string
		dst **models.Date
	}{
		{"date", &f.Date},
		{"start_date", &f.From},
		{"end_date", &f.To},
	}
	for _, d := range dates {
		v := c.Query(d.key)
		if v == "" {
			continue
		}
		parsed, err := models.ParseDate(v)
		if err != nil {
			problems.Add(d.key, "Date has wrong format. Use YYYY-MM-DD.")
			continue
		}
		*d.dst = &parsed
	}

	if len(problems) > 0 {
		response.FieldErrors(c, problems)
		return f, false
	}
	return f, true
}
