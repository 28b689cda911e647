package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ragcore/ragcore/models"
)

const claimsContextKey = "auth_claims"

// RequireAdmin returns gin middleware gating the internal knowledge-base
// admin routes (delete/reindex) behind a valid tenant-admin bearer token
// with at least the given role, matching the path the teacher's admin-only
// routes in handlers/agent_handlers.go already establish.
func RequireAdmin(v *JWTValidator, minRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing bearer token"})
			return
		}
		claims, err := v.ValidateToken(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}
		if err := RequireRole(claims, minRole); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": err.Error()})
			return
		}
		pathTenant := c.Param("tenantId")
		if pathTenant != "" && pathTenant != claims.TenantID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "token tenant does not match requested tenant"})
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// ClaimsFrom retrieves the validated claims stashed by RequireAdmin.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
