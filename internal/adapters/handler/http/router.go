package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-stats-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-stats-engine/internal/metrics"
)

type RouterDependencies struct {
	StatsHandler   *StatsHandler
	DB             *sqlx.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
	StartTime      time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Metrics())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept-Encoding", middleware.UserIDHeader}
	if len(deps.AllowedOrigins) == 0 || deps.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", healthHandler(deps))
	router.GET("/metrics", metrics.PrometheusHandler())

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.UserContext())
	if deps.Redis != nil && deps.RateLimit > 0 {
		apiV1.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow, deps.Logger))
	}

	deps.StatsHandler.RegisterRoutes(apiV1)

	return router
}

// healthHandler reports 503 when a configured backend is unreachable.
// A nil DB or Redis means the backend is not in use.
func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := 200

		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			status = "degraded"
			code = 503
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
