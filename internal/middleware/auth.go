package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hospital-device-booking/internal/auth"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
)

const (
	ContextUserID    = "userID"
	ContextUserRole  = "userRole"
	ContextUserName  = "userName"
	ContextUserEmail = "userEmail"
)

func AuthMiddleware(iss *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Expected a Bearer token")
			return
		}

		claims, err := iss.Parse(strings.TrimSpace(parts[1]), auth.TokenAccess)
		if err != nil {
			httperr.Unauthorized(c, "invalid_token", "Token is invalid or expired")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			httperr.Unauthorized(c, "invalid_token_payload", "Token subject is invalid")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserName, claims.Name)
		c.Set(ContextUserEmail, claims.Email)

		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		httperr.ForbiddenResponse(c, "forbidden", "You do not have permission to perform this action")
	}
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

func CurrentRole(c *gin.Context) user.Role {
	return user.Role(c.GetString(ContextUserRole))
}
