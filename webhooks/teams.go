package webhooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TeamsHandler adapts a Microsoft Teams activity payload.
type TeamsHandler struct {
	orchestrator queryHandler
}

func NewTeamsHandler(o queryHandler) *TeamsHandler {
	return &TeamsHandler{orchestrator: o}
}

type teamsPayload struct {
	TenantID string `json:"tenantId"`
	From     struct {
		ID string `json:"id"`
	} `json:"from"`
	Text string `json:"text"`
}

// Webhook handles POST /webhooks/teams.
func (h *TeamsHandler) Webhook(c *gin.Context) {
	var payload teamsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid Teams payload"})
		return
	}
	if payload.From.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid Teams payload"})
		return
	}
	forward(c, h.orchestrator, payload.TenantID, payload.From.ID, "teams", payload.Text)
}
