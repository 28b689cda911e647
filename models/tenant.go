package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Tenant is the root of isolation: every other entity below carries a tenant
// link directly or transitively, and deletion cascades from here.
type Tenant struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string         `json:"name" gorm:"not null"`
	Domain           string         `json:"domain" gorm:"uniqueIndex;not null"`
	SubscriptionTier string         `json:"subscription_tier" gorm:"default:BASIC"`
	Settings         datatypes.JSON `json:"settings" gorm:"type:jsonb;default:'{}'"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Tenant) TableName() string { return "ragcore.tenants" }

// UserRole is the RBAC hierarchy of original_source/ai_core/models/rbac.py,
// used to gate internal knowledge-base admin routes (delete/reindex).
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleManager UserRole = "MANAGER"
	RoleAgent   UserRole = "AGENT"
	RoleEndUser UserRole = "END_USER"
)

// User is created lazily on first message; both internal staff and external
// end users are represented here, distinguished by UserType/Role.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	ExternalID   string         `json:"external_id"`
	UserType     string         `json:"user_type" gorm:"not null"` // INTERNAL_STAFF | EXTERNAL_CUSTOMER
	Role         UserRole       `json:"role" gorm:"default:END_USER"`
	Preferences  datatypes.JSON `json:"preferences" gorm:"type:jsonb;default:'{}'"`
	LastActiveAt time.Time      `json:"last_active_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (User) TableName() string { return "ragcore.users" }

// KnowledgeBase organizes a tenant's documents. One tenant has >= 1 KB; a
// default KB is created on first ingest (EnsureDefaultKnowledgeBase).
type KnowledgeBase struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID      uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description"`
	Status        string    `json:"status" gorm:"default:ACTIVE"` // ACTIVE, BUILDING, ARCHIVED
	DocumentCount int       `json:"document_count" gorm:"default:0"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (KnowledgeBase) TableName() string { return "ragcore.knowledge_bases" }
