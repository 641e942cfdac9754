package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/handler"
	"github.com/stemsi/class-subjects/internal/middleware"
	"github.com/stemsi/class-subjects/internal/response"
	"github.com/stemsi/class-subjects/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Subject *handler.SubjectHandler
	Feed    *handler.FeedHandler
}

// mountPrefixes are the roots the subjects API is served under. The admin
// page has used both, so both stay routable.
var mountPrefixes = []string{"/", "/api"}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work owned by the router, such as rate limiter sweeps.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID and a request-scoped logger for every response.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.RequestLogger())

	router.Use(middleware.Compress("/metrics"))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "store": cfg.SubjectsStore})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var submitLimit gin.HandlerFunc
	if cfg.SubmitRatePerMinute > 0 {
		submitLimit = middleware.NewRateLimiter(ctx, cfg.SubmitRatePerMinute, time.Minute).Middleware()
	}

	for _, prefix := range mountPrefixes {
		api := router.Group(prefix)
		api.Use(middleware.RequireAdminJWT(authService))
		{
			api.GET("/classes", middleware.CacheControl(3600), handlers.Subject.ListClasses)

			subjectsGroup := api.Group("/subjects")
			{
				subjectsGroup.GET("", middleware.NoStore(), handlers.Subject.GetAll)
				if submitLimit != nil {
					subjectsGroup.POST("", submitLimit, handlers.Subject.Create)
				} else {
					subjectsGroup.POST("", handlers.Subject.Create)
				}
				subjectsGroup.GET("/stream", handlers.Feed.Stream)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
