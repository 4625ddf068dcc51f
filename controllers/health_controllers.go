package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Hub   *hub.Hub
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, h *hub.Hub) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Hub: h}
}

func (hc *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health pings the database and, when configured, Redis.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	checks["database"] = statusOf(err)
	healthy = healthy && err == nil

	if hc.Redis != nil {
		err := hc.Redis.Ping(ctx).Err()
		checks["redis"] = statusOf(err)
		healthy = healthy && err == nil
	}
	if hc.Hub != nil {
		checks["live_clients"] = hc.Hub.ClientCount()
	}

	code, status := http.StatusOK, "ok"
	if !healthy {
		code, status = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

func statusOf(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

// Metrics exposes the default Prometheus registry.
func (hc *HealthController) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
