package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neighbornet/internal/config"
	"neighbornet/pkg/utils"
)

// AuthMiddleware verifies the token issued by the identity service and
// stores the verified (userID, deviceID) pair on the request context. The
// engine performs no credential verification beyond this.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token, cfg.JWT.Secret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("deviceID", claims.DeviceID)

		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header, falling back
// to the token query parameter for websocket and SSE clients that cannot set
// headers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

// CurrentUserID returns the authenticated user id from the context.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentDeviceID returns the authenticated device id from the context.
func CurrentDeviceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("deviceID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
