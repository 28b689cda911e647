// Package webhooks adapts each channel's platform-shaped payload into the
// internal query request and forwards it to the orchestrator, grounded on
// original_source/ai_core/api/webhooks/{teams,telegram,whatsapp}.py and
// shared/utils/channel_adapter.py's per-channel identifier extraction.
package webhooks

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/orchestrator"
	"github.com/ragcore/ragcore/ragerrors"
)

// channelNamespace seeds the deterministic UUID derivation below; any fixed
// namespace works as long as it never changes, since only self-consistency
// (same external id -> same UUID) matters.
var channelNamespace = uuid.MustParse("6f5bd1fa-6c19-4b7c-8f53-9e9c34f6d5a1")

// deterministicID maps an external identifier (a phone number, an AAD
// object id, a Telegram numeric id) onto a stable UUID, so the same external
// user/tenant always resolves to the same internal row without requiring
// every channel to speak UUIDs natively.
func deterministicID(raw string) uuid.UUID {
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.NewSHA1(channelNamespace, []byte(raw))
}

type queryHandler interface {
	Handle(ctx context.Context, req models.QueryRequest) (models.QueryResponse, error)
}

var _ queryHandler = (*orchestrator.Orchestrator)(nil)

func forward(c *gin.Context, o queryHandler, tenantRaw, userRaw, channel, message string) {
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "empty message payload"})
		return
	}
	req := models.QueryRequest{
		TenantID: deterministicID(valueOr(tenantRaw, "default-tenant")).String(),
		UserID:   deterministicID(userRaw).String(),
		Channel:  channel,
		Message:  message,
	}
	resp, err := o.Handle(c.Request.Context(), req)
	if err != nil {
		c.JSON(ragerrors.StatusCode(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted", "response": resp})
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
