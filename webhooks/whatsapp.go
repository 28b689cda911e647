package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// WhatsAppHandler adapts a WhatsApp Business Cloud API webhook payload,
// optionally verifying its HMAC-SHA256 signature when a shared secret is
// configured (spec.md §6: "webhooks MAY validate X-Hub-Signature-256").
type WhatsAppHandler struct {
	orchestrator queryHandler
	appSecret    string
}

func NewWhatsAppHandler(o queryHandler, appSecret string) *WhatsAppHandler {
	return &WhatsAppHandler{orchestrator: o, appSecret: appSecret}
}

type whatsAppPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
				} `json:"metadata"`
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func verifySignature(body []byte, signatureHeader, secret string) bool {
	expected := strings.TrimPrefix(signatureHeader, "sha256=")
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(computed))
}

// Webhook handles POST /webhooks/whatsapp.
func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read request body"})
		return
	}

	if h.appSecret != "" {
		signature := c.GetHeader("X-Hub-Signature-256")
		if signature == "" || !verifySignature(body, signature, h.appSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid signature"})
			return
		}
	}

	var payload whatsAppPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid WhatsApp payload"})
		return
	}

	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid WhatsApp payload"})
		return
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 || value.Messages[0].From == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid WhatsApp payload"})
		return
	}
	msg := value.Messages[0]
	tenantRaw := value.Metadata.DisplayPhoneNumber
	forward(c, h.orchestrator, tenantRaw, msg.From, "whatsapp", msg.Text.Body)
}
