package handler

import (
	"encoding/json"
	"errors"

	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user profile API requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUser handles signup
// POST /add-user/
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			response.FieldErrors(c, map[string][]string{"username": {"A user with that username already exists."}})
			return
		}
		respondError(c, err)
		return
	}

	response.Created(c, user)
}

// ListUsers handles listing every user
// GET /users/
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, users)
}

// GetUser handles getting a single user
// GET /users/:id/
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// UpdateUser handles the restricted partial profile update
// PATCH /update-user/:id/
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload map[string]json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(id, payload)
	if err != nil {
		if errors.Is(err, service.ErrFieldNotUpdatable) {
			response.BadRequest(c, service.ProfileUpdateMessage)
			return
		}
		respondError(c, err)
		return
	}

	response.Success(c, user)
}

// DeleteUser handles deleting a user and their activity
// DELETE /users/:id/
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.NoContent(c)
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/add-user/", h.CreateUser)
	rg.PATCH("/update-user/:id/", h.UpdateUser)

	users := rg.Group("/users")
	{
		users.GET("/", h.ListUsers)
		users.GET("/:id/", h.GetUser)
		users.DELETE("/:id/", h.DeleteUser)
	}
}
