package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore/ragcore/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouterWithAdmin(v *JWTValidator, minRole models.UserRole) *gin.Engine {
	r := gin.New()
	r.DELETE("/api/v1/admin/tenants/:tenantId/documents/:documentId", RequireAdmin(v, minRole), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no claims"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant": claims.TenantID})
	})
	return r
}

func TestRequireAdmin_RejectsMissingHeader(t *testing.T) {
	v := NewJWTValidator("secret")
	r := newRouterWithAdmin(v, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/tenants/t1/documents/d1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_RejectsTenantMismatch(t *testing.T) {
	v := NewJWTValidator("secret")
	token, err := v.IssueToken("admin-1", "other-tenant", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	r := newRouterWithAdmin(v, models.RoleAdmin)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/tenants/t1/documents/d1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_RejectsInsufficientRole(t *testing.T) {
	v := NewJWTValidator("secret")
	token, err := v.IssueToken("agent-1", "t1", models.RoleAgent, time.Hour)
	require.NoError(t, err)

	r := newRouterWithAdmin(v, models.RoleAdmin)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/tenants/t1/documents/d1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_AllowsMatchingAdmin(t *testing.T) {
	v := NewJWTValidator("secret")
	token, err := v.IssueToken("admin-1", "t1", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	r := newRouterWithAdmin(v, models.RoleAdmin)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/tenants/t1/documents/d1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
