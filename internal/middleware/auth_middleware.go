// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"cobramax-service/internal/pkg/authz"
	"cobramax-service/internal/pkg/jwt"
	"cobramax-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	jwtManager *jwt.Manager
}

func NewAuthMiddleware(jwtManager *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// Auth is the base authentication middleware that validates JWT tokens
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.jwtManager.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		// Set user context
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireAction authorizes the caller's role against the policy table.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			response.Error(c, http.StatusForbidden, "no role found - authentication required", nil)
			return
		}

		if !authz.Allow(role, action) {
			err := errors.New("role is not allowed to perform this action")
			response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
				"required_action": action,
				"user_role":       role,
			})
			return
		}

		c.Next()
	}
}

// RequireRole requires the caller to have one of the given roles.
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			response.Error(c, http.StatusForbidden, "no role found - authentication required", nil)
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		err := errors.New("user does not have required role")
		response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
			"required_roles": roles,
			"user_role":      role,
		})
	}
}

// extractToken pulls the bearer token from the Authorization header, with a
// query parameter fallback for the chat widget.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}
