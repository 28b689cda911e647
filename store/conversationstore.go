package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/ragerrors"
)

// ConversationStore implements C9: per-(tenant,user,channel) conversation
// plus its append-only messages and mutable context.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// GetOrCreate returns the single ACTIVE conversation for (tenant, user,
// channel), creating the user (lazily, to satisfy referential integrity)
// and the conversation if neither exists yet.
func (s *ConversationStore) GetOrCreate(tenantID, userID uuid.UUID, channel string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			user = models.User{
				ID:           userID,
				TenantID:     tenantID,
				UserType:     "EXTERNAL_CUSTOMER",
				Role:         "END_USER",
				Preferences:  datatypes.JSON([]byte(`{}`)),
				LastActiveAt: time.Now(),
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		}

		err := tx.Where("tenant_id = ? AND user_id = ? AND channel = ? AND status = ?",
			tenantID, userID, channel, models.ConversationStatusActive).
			First(&conv).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		now := time.Now()
		conv = models.Conversation{
			TenantID:       tenantID,
			UserID:         userID,
			Channel:        channel,
			Status:         models.ConversationStatusActive,
			Context:        datatypes.JSON([]byte(`{}`)),
			ChannelContext: datatypes.JSON([]byte(`{}`)),
			StartedAt:      now,
			LastMessageAt:  now,
		}
		return tx.Create(&conv).Error
	})
	if err != nil {
		return nil, &ragerrors.StorageError{Op: "get_or_create_conversation", Err: err}
	}
	return &conv, nil
}

// AppendMessage appends a message and bumps last_message_at. Per the
// ordering invariant, callers must append the USER message before
// dispatching strategies and the SYSTEM message only after a strategy
// returns.
func (s *ConversationStore) AppendMessage(conv *models.Conversation, senderType, content, messageType string, meta map[string]interface{}) (*models.Message, error) {
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		metaBytes = []byte(`{}`)
	}
	if messageType == "" {
		messageType = "TEXT"
	}
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderType:     senderType,
		Content:        content,
		MessageType:    messageType,
		Metadata:       datatypes.JSON(metaBytes),
		Timestamp:      time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Update("last_message_at", msg.Timestamp).Error
	})
	if err != nil {
		return nil, &ragerrors.StorageError{Op: "append_message", Err: err}
	}
	conv.LastMessageAt = msg.Timestamp
	return msg, nil
}

// MarkProcessed flips Message.IsProcessed once a strategy has produced a
// response for the turn the message belongs to.
func (s *ConversationStore) MarkProcessed(messageID uuid.UUID) error {
	if err := s.db.Model(&models.Message{}).Where("id = ?", messageID).Update("is_processed", true).Error; err != nil {
		return &ragerrors.StorageError{Op: "mark_processed", Err: err}
	}
	return nil
}

// UpdateContext overwrites the conversation's stored context with ctx as a
// whole. It does not merge ctx into the previous value: a key absent from
// the marshalled ctx is absent from the stored context afterwards.
func (s *ConversationStore) UpdateContext(conv *models.Conversation, ctx models.ConversationContext) error {
	ctxBytes, err := json.Marshal(ctx)
	if err != nil {
		return &ragerrors.StorageError{Op: "update_context", Err: err}
	}
	if err := s.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).
		Update("context", datatypes.JSON(ctxBytes)).Error; err != nil {
		return &ragerrors.StorageError{Op: "update_context", Err: err}
	}
	conv.Context = datatypes.JSON(ctxBytes)
	return nil
}

// Context unmarshals the conversation's stored context into its typed shape.
func Context(conv *models.Conversation) models.ConversationContext {
	var ctx models.ConversationContext
	_ = json.Unmarshal(conv.Context, &ctx)
	return ctx
}

// RecentMessages returns up to limit of a conversation's most recent
// messages, oldest first.
func (s *ConversationStore) RecentMessages(conv *models.Conversation, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.Where("conversation_id = ?", conv.ID).Order("timestamp desc").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, &ragerrors.StorageError{Op: "recent_messages", Err: err}
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
