package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(map[string]interface{}{
			"method":  c.Request.Method,
			"status":  status,
			"latency": latency.String(),
			"ip":      c.ClientIP(),
		})
		if uid := UserID(c); uid != 0 {
			entry = entry.WithField("user_id", uid)
		}
		if status >= 500 {
			entry.Warn(path)
			return
		}
		entry.Info(path)
	}
}
