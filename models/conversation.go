package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ConversationStatusActive    = "ACTIVE"
	ConversationStatusCompleted = "COMPLETED"
	ConversationStatusEscalated = "ESCALATED"
)

// Conversation maintains short-term context across channels. At most one
// ACTIVE conversation may exist per (tenant_id, user_id, channel).
type Conversation struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID       uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index:idx_conv_identity"`
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_conv_identity"`
	Channel        string         `json:"channel" gorm:"not null;index:idx_conv_identity"`
	Status         string         `json:"status" gorm:"default:ACTIVE;index:idx_conv_identity"`
	Context        datatypes.JSON `json:"context" gorm:"type:jsonb;default:'{}'"`
	ChannelContext datatypes.JSON `json:"channel_context" gorm:"type:jsonb;default:'{}'"`
	StartedAt      time.Time      `json:"started_at"`
	LastMessageAt  time.Time      `json:"last_message_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}

func (Conversation) TableName() string { return "ragcore.conversations" }

// ConversationContext is the typed shape of Conversation.Context: the
// planner/strategy short-term memory (last referenced person, list
// position, last chapter seen).
type ConversationContext struct {
	LastPerson       string   `json:"last_person,omitempty"`
	LastChapter      *int     `json:"last_chapter,omitempty"`
	LastChapterTitle string   `json:"last_chapter_title,omitempty"`
	LastListTopic    string   `json:"last_list_topic,omitempty"`
	LastListItems    []string `json:"last_list_items,omitempty"`
	LastListIndex    int      `json:"last_list_index,omitempty"`
}

const (
	SenderUser       = "USER"
	SenderSystem     = "SYSTEM"
	SenderHumanAgent = "HUMAN_AGENT"
)

// Message is an append-only entry in a conversation's log; never updated.
type Message struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConversationID uuid.UUID      `json:"conversation_id" gorm:"type:uuid;not null;index"`
	SenderType     string         `json:"sender_type" gorm:"not null"` // USER, SYSTEM, HUMAN_AGENT
	Content        string         `json:"content" gorm:"not null"`
	MessageType    string         `json:"message_type" gorm:"default:TEXT"`
	Metadata       datatypes.JSON `json:"metadata" gorm:"column:metadata;type:jsonb;default:'{}'"`
	Timestamp      time.Time      `json:"timestamp"`
	IsProcessed    bool           `json:"is_processed" gorm:"default:false"`
}

func (Message) TableName() string { return "ragcore.messages" }
