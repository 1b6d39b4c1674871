package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/attendly/backend/internal/auth"
	"github.com/attendly/backend/pkg/response"
)

const (
	// ContextUserID is the key for the organizer ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for the organizer email in gin context.
	ContextUserEmail = "user_email"
)

// JWT returns a middleware that validates the bearer token and sets organizer
// claims in context. Downstream handlers trust this identity without
// re-verifying credentials.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
