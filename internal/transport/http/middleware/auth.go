package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/pkg/auth"
	"github.com/iamasit07/5-in-a-row/backend/pkg/httputil"
)

// Context keys set by AuthMiddleware.
const (
	PlayerIDKey   = "player_id"
	PlayerNameKey = "player_name"
)

// AuthMiddleware attaches the player from a token in the cookie, header or
// query. With required=false requests without a token pass through anonymous,
// but a token that is present must still be valid.
func AuthMiddleware(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "player token required"})
				return
			}
			c.Next()
			return
		}

		claims, err := auth.ValidatePlayerToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid token"})
			return
		}

		c.Set(PlayerIDKey, claims.PlayerID)
		c.Set(PlayerNameKey, claims.Name)
		c.Next()
	}
}
