package webhooks

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TelegramHandler adapts a Telegram Bot API update payload.
type TelegramHandler struct {
	orchestrator queryHandler
}

func NewTelegramHandler(o queryHandler) *TelegramHandler {
	return &TelegramHandler{orchestrator: o}
}

type telegramPayload struct {
	TenantID string `json:"tenantId"`
	Message  struct {
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Text string `json:"text"`
	} `json:"message"`
}

// Webhook handles POST /webhooks/telegram.
func (h *TelegramHandler) Webhook(c *gin.Context) {
	var payload telegramPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid Telegram payload"})
		return
	}
	if payload.Message.From.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid Telegram payload"})
		return
	}
	userID := fmt.Sprintf("%d", payload.Message.From.ID)
	forward(c, h.orchestrator, payload.TenantID, userID, "telegram", payload.Message.Text)
}
