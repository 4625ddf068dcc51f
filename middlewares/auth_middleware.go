package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// Context keys set by the auth middlewares.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
	KeyToken  = "token"
)

// Authenticator validates a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.CustomClaims, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		tokenString, ok := utils.BearerToken(authHeader)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header must use the Bearer scheme"))
			c.Abort()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			abortAuth(c, err)
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyToken, tokenString)
		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAccountDisabled):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
	default:
		utils.ErrorLogger.Errorf("Token check failed on %s: %v", c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("could not verify token"))
	}
	c.Abort()
}

// UserID returns the authenticated user id, or 0 outside AuthMiddleware.
func UserID(c *gin.Context) uint {
	id, _ := c.Get(KeyUserID)
	v, _ := id.(uint)
	return v
}

func Role(c *gin.Context) string {
	return c.GetString(KeyRole)
}
