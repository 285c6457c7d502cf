package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

// inherits lists the roles that are admitted wherever the key role is.
var inherits = map[models.UserRole][]models.UserRole{
	models.RoleSPOC:         {models.RoleCalendarTeam, models.RoleAdmin},
	models.RoleCalendarTeam: {models.RoleAdmin},
}

// RoleAllowed reports whether role may use a route guarded by allowed.
func RoleAllowed(role models.UserRole, allowed ...models.UserRole) bool {
	for _, want := range allowed {
		if role == want {
			return true
		}
		for _, higher := range inherits[want] {
			if role == higher {
				return true
			}
		}
	}
	return false
}

// RequireRoles admits callers holding one of roles or a role above it.
// It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !RoleAllowed(claims.Role, roles...) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
