package router

import (
	"net/http"
	"time"

	"github.com/fittracker-api/internal/handler"
	"github.com/fittracker-api/internal/middleware"
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/pkg/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services are the dependencies the HTTP surface is built from
type Services struct {
	Auth          *service.AuthService
	User          *service.UserService
	DailyActivity *service.DailyActivityService
	ManualEntry   *service.ManualEntryService
	Weekly        *service.WeeklyService
	Hub           *service.RealtimeHub
}

// Options tune the engine
type Options struct {
	CORSOrigins []string
	Version     string
	// Registry receives the HTTP metrics; nil uses a fresh registry
	Registry *prometheus.Registry
}

// New builds the gin engine with every route registered
func New(svc Services, opts Options) *gin.Engine {
	response.Setup(service.RuleMessage)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(registry)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(metrics.Middleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(corsMiddleware(opts.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": opts.Version,
			"time":    time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("")
	authMiddleware := middleware.AuthMiddleware(svc.Auth)

	handler.NewAuthHandler(svc.Auth).RegisterRoutes(api, authMiddleware)
	handler.NewUserHandler(svc.User).RegisterRoutes(api)
	handler.NewDailyActivityHandler(svc.DailyActivity).RegisterRoutes(api)
	handler.NewManualEntryHandler(svc.ManualEntry).RegisterRoutes(api)
	handler.NewWeeklyHandler(svc.Weekly).RegisterRoutes(api)
	handler.NewRealtimeHandler(svc.Hub, svc.User, opts.CORSOrigins).RegisterRoutes(api)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
