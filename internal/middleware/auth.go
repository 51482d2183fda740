package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studiobook/internal/pkg/jwt"
	"studiobook/internal/pkg/response"
)

// JWTAuth validates the bearer token and stores the caller's identity in the
// request context under "user_id" and "role".
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be a bearer token")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
