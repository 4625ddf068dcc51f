package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/models"
)

// WebSocketAuthMiddleware authenticates the ?token= query parameter, since
// browsers cannot set headers on a websocket handshake. Only staff may listen.
func WebSocketAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if !models.Contains(models.StaffRoles, claims.Role) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(KeyRole, claims.Role)
		c.Set(KeyUserID, claims.UserID)
		c.Next()
	}
}
