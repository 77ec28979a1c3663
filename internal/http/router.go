package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/civix/backend/internal/config"
	"github.com/civix/backend/internal/db"
	"github.com/civix/backend/internal/engine"
	"github.com/civix/backend/internal/http/handlers"
	"github.com/civix/backend/internal/http/middleware"
	"github.com/civix/backend/internal/notify"

	_ "github.com/civix/backend/docs"
)

func Router(cfg config.Config, store *db.Store, eng *engine.Engine, inbox *notify.Inbox, emitter *notify.Emitter, registry *prometheus.Registry, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Engine:    eng,
		Inbox:     inbox,
		Emitter:   emitter,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.POST("/issues", h.ReportIssue)
		api.GET("/issues", h.IssuesList)
		api.GET("/issues/:id", h.IssueDetails)
		api.GET("/technicians", h.TechniciansList)
		api.GET("/technicians/nearby", h.TechniciansNearby)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/technicians", h.TechnicianCreate)
		admin.POST("/issues/:id/resolve", h.ResolveIssue)
		admin.POST("/issues/:id/reassign", h.Reassign)
		admin.GET("/notifications", h.NotificationsList)
		admin.POST("/notifications/:id/read", h.NotificationRead)
		admin.POST("/notifications/read-all", h.NotificationsReadAll)
		admin.DELETE("/notifications/:id", h.NotificationDelete)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
