// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by every issued token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims carry a specific role.
func (c *Claims) HasRole(role string) bool {
	return c.Role == role
}

// IsAdmin checks if the user is an admin.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// IsStaff checks if the user belongs to back-office staff.
func (c *Claims) IsStaff() bool {
	return c.Role == "admin" || c.Role == "oficina"
}
