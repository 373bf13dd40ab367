package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/watchdeck/watchdeck/internal/server/handlers/files"
	"github.com/watchdeck/watchdeck/internal/server/middlewares"
	"github.com/watchdeck/watchdeck/internal/version"
)

func SetupRoutes(config *Config, svc *Services) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20 // 8 MiB
	r.HandleMethodNotAllowed = true

	filesH := files.New(svc.Store, svc.Journal)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	if config.HTTP.Domain != "" {
		r.Use(middlewares.HSTS())
	}
	r.Use(middlewares.GZIP())
	r.Use(cors.Default())
	if config.RateLimit != "" {
		r.Use(middlewares.RateLimiter(config.RateLimit))
	}

	r.GET("/", IndexHandler)
	r.GET("/health", HealthHandler)

	r.POST("/upload", filesH.Upload)
	r.GET("/api/files", filesH.List)
	r.GET("/api/content/*path", filesH.Content)
	r.DELETE("/api/files/*path", filesH.Delete)
	r.GET("/api/collections", filesH.Collections)

	r.NoRoute(func(c *gin.Context) {
		c.PureJSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.PureJSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"service": "watchdeck dashboard",
		"version": version.Version,
		"endpoints": []string{
			"/health",
			"/upload",
			"/api/files",
			"/api/content/{path}",
			"/api/collections",
		},
	})
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
