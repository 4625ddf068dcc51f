package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// RequireRoles lets the request through only when the caller holds one of roles.
// It must run after AuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	denied := fmt.Errorf("requires one of roles: %s", strings.Join(roles, ", "))
	return func(c *gin.Context) {
		role, exists := c.Get(KeyRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}
		if !models.Contains(roles, role.(string)) {
			utils.RespondError(c, http.StatusForbidden, denied)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff rejects guests.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(models.StaffRoles...)
}
