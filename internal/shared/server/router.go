package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"docquery-backend/internal/documents"
	"docquery-backend/internal/services/health"
	"docquery-backend/internal/shared/config"
	"docquery-backend/internal/shared/metrics"
	"docquery-backend/internal/shared/server/middleware"
	"docquery-backend/internal/shared/server/respond"
	"docquery-backend/internal/users"
)

// Deps bundles the handlers and services the router mounts.
type Deps struct {
	Health    *health.Service
	Users     *users.Handler
	Documents *documents.Handler
	Resolver  middleware.IdentityResolver
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		corsMiddleware(cfg.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"message": "Document Management API is running"})
	})
	r.GET("/features", func(c *gin.Context) {
		respond.OK(c, gin.H{"features": []string{
			"PDF upload with text extraction",
			"Automatic title, subject and summary generation",
			"Natural-language questions over document content",
			"Per-document query history",
		}})
	})
	r.GET("/healthz", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status(c.Request.Context()))
	})
	r.GET("/metrics", metrics.Handler())

	public := r.Group("")
	deps.Users.RegisterPublicRoutes(public)

	authed := r.Group("", middleware.Auth(deps.Resolver))
	deps.Users.RegisterRoutes(authed)
	deps.Documents.RegisterRoutes(authed)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if wildcard(origins) {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}

func wildcard(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
