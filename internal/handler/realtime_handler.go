package handler

import (
	"net/http"

	"github.com/fittracker-api/internal/middleware"
	"github.com/fittracker-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades clients onto a user's activity feed
type RealtimeHandler struct {
	hub         *service.RealtimeHub
	userService *service.UserService
	upgrader    websocket.Upgrader
}

// NewRealtimeHandler creates a new RealtimeHandler. allowedOrigins empty
// accepts any origin.
func NewRealtimeHandler(hub *service.RealtimeHub, userService *service.UserService, allowedOrigins []string) *RealtimeHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &RealtimeHandler{
		hub:         hub,
		userService: userService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// Subscribe streams activity events of one user until the client disconnects
// GET /ws/activity/:user_id/
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	if _, err := h.userService.Get(userID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		middleware.Logger.Debug("websocket_upgrade_failed", zap.Error(err))
		return
	}

	client := service.NewWSClient(userID, conn)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	// read loop ends on client close/error
	for {
		if _, _, err := client.Conn().ReadMessage(); err != nil {
			return
		}
	}
}

// RegisterRoutes registers realtime routes
func (h *RealtimeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/activity/:user_id/", h.Subscribe)
}
