// Package router builds the gin engine from the composed application.
package router

import (
	"net/http"
	"time"

	apphttp "lead_portal_backend/internal/http"
	"lead_portal_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const serviceName = "lead-portal-api"

// New wires global middleware, the health and index endpoints, and every
// module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = false

	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(app.Config.GetRateLimitRPS()), app.Config.GetRateLimitBurst(), app.Logger)
	engine.Use(limiter.RateLimit())

	engine.GET("/api/health", healthHandler(app))

	v1 := engine.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(httpkit.AuthRequired(app.Config))

	rc := &apphttp.RouterContext{
		Engine:          engine,
		V1:              v1,
		Protected:       protected,
		Config:          app.Config,
		AuthMiddleware:  httpkit.AuthRequired(app.Config),
		AdminMiddleware: httpkit.RequireRole(app.Config, httpkit.RoleAdmin),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(rc)
		app.Logger.Debug("module routes registered", "module", module.Name())
	}

	engine.GET("/api", indexHandler(engine))
	engine.NoRoute(httpkit.NotFoundRoute)

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return corsCfg
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		database := "ok"
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				status = http.StatusServiceUnavailable
				database = "unavailable"
			}
		}
		c.JSON(status, gin.H{
			"status":    http.StatusText(status),
			"service":   serviceName,
			"database":  database,
			"timestamp": time.Now().UTC(),
		})
	}
}

// indexHandler lists the registered API routes.
func indexHandler(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := engine.Routes()
		endpoints := make([]gin.H, 0, len(routes))
		for _, route := range routes {
			endpoints = append(endpoints, gin.H{"method": route.Method, "path": route.Path})
		}
		c.JSON(http.StatusOK, gin.H{
			"service":   serviceName,
			"version":   "v1",
			"endpoints": endpoints,
		})
	}
}
