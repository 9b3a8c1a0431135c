package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/resumes"
	"jobmatch-backend/internal/services/health"
	"jobmatch-backend/internal/shared/auth"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

const (
	rateLimitGroupUpload = "UPLOAD"
	uploadRoute          = "/api/v1/resumes"
)

// RouterDeps carries the handlers and services the router mounts.
type RouterDeps struct {
	Config        config.Config
	Validator     auth.Validator
	ResumeHandler *resumes.Handler
	Health        *health.Service
	RateLimiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Validator, "/", "/api/v1/health", "/metrics"),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{
			"message": "JobMatch API",
			"version": Version,
			"status":  "running",
		})
	})
	r.GET("/metrics", metrics.Handler())

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status(c.Request.Context()))
	})
	registerMeRoutes(api)
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rps := deps.Config.RateLimitRPS
	burst := deps.Config.RateLimitBurst
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 20
	}
	// Uploads hit the embedding provider, so they get a tighter bucket.
	uploadBurst := burst / 4
	if uploadBurst < 1 {
		uploadBurst = 1
	}
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":            {Rate: rps, Burst: burst},
			rateLimitGroupUpload: {Rate: rps / 5, Burst: uploadBurst},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.TrimSuffix(c.Request.URL.Path, "/") == uploadRoute {
				return rateLimitGroupUpload
			}
			return ""
		},
		Limiter: deps.RateLimiter,
	}
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
