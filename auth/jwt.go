// Package auth gates the internal admin surface (knowledge-base
// delete/reindex) with tenant-admin bearer tokens, adapted from the
// teacher's Keycloak-flavored JWT validator. The query/ingest/webhook
// endpoints are the core's external contract per spec.md §6 and are not
// gated here.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ragcore/ragcore/models"
)

// Claims carries the tenant-admin identity and RBAC role used to gate
// internal knowledge-base routes, grounded on
// original_source/ai_core/models/rbac.py's role hierarchy.
type Claims struct {
	Sub      string `json:"sub"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates HMAC-signed tenant-admin bearer tokens. Unlike the
// teacher's Keycloak variant, this core has no external identity provider to
// fetch JWKS from; a single shared secret is enough for the internal-ops
// surface it guards.
type JWTValidator struct {
	secret []byte
}

func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// ValidateToken validates a bearer token and returns its claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	if tokenString == "" {
		return nil, errors.New("missing bearer token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TenantID == "" {
		return nil, errors.New("token missing tenant_id claim")
	}

	return claims, nil
}

// RequireRole checks claims against the RBAC role hierarchy of §C: ADMIN
// satisfies any requirement; MANAGER satisfies MANAGER/AGENT/END_USER; and
// so on down the chain.
func RequireRole(claims *Claims, required models.UserRole) error {
	rank := map[string]int{
		string(models.RoleEndUser): 0,
		string(models.RoleAgent):   1,
		string(models.RoleManager): 2,
		string(models.RoleAdmin):   3,
	}
	have, ok := rank[claims.Role]
	if !ok {
		return fmt.Errorf("unknown role: %s", claims.Role)
	}
	want, ok := rank[string(required)]
	if !ok {
		return fmt.Errorf("unknown required role: %s", required)
	}
	if have < want {
		return fmt.Errorf("insufficient role: have %s, need %s", claims.Role, required)
	}
	return nil
}

// IssueToken mints a tenant-admin bearer token, used by tests and the
// (out-of-scope) operator tooling that provisions admin credentials.
func (v *JWTValidator) IssueToken(subject, tenantID string, role models.UserRole, ttl time.Duration) (string, error) {
	claims := Claims{
		Sub:      subject,
		TenantID: tenantID,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}