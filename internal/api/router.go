package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/middleware"
)

// Registrar is implemented by every resource handler.
type Registrar interface {
	Register(r *gin.Engine)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything RegisterRoutes needs. Redis and DB may be nil.
type Deps struct {
	Log            *zap.Logger
	Redis          *redis.Client
	DB             Pinger
	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigins    []string
	Handlers       []Registrar
}

// RegisterRoutes installs the global middleware, the service endpoints and every handler.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.MetricsMiddleware())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Staycation",
			"description": "Hotel stay booking for senior travellers with add-on services, payments and an admin dashboard.",
			"version":     "1.0.0",
			"docs":        "/docs",
			"endpoints": []string{
				"/api/hotels", "/api/rooms", "/api/services", "/api/bookings",
				"/api/users", "/api/auth", "/api/payments", "/api/refunds", "/api/admin/dashboard",
			},
		})
	})
	r.GET("/health", func(c *gin.Context) {
		if d.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.DB.Ping(ctx); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterDocs(r)

	if d.RateLimitRPS > 0 {
		if d.Redis != nil {
			r.Use(middleware.HybridRateLimit(d.Redis, d.RateLimitRPS, d.RateLimitBurst))
		} else {
			r.Use(middleware.RateLimit(d.RateLimitRPS, d.RateLimitBurst))
		}
	}

	for _, h := range d.Handlers {
		h.Register(r)
	}
}
