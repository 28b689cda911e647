package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore/ragcore/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeQueryHandler struct {
	lastReq models.QueryRequest
	resp    models.QueryResponse
	err     error
}

func (f *fakeQueryHandler) Handle(ctx context.Context, req models.QueryRequest) (models.QueryResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestDeterministicID_StableAndDistinct(t *testing.T) {
	a1 := deterministicID("+15551234567")
	a2 := deterministicID("+15551234567")
	b := deterministicID("+15559876543")

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestDeterministicID_PassesThroughValidUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, deterministicID(id.String()))
}

func TestTeamsWebhook_Forwards(t *testing.T) {
	fake := &fakeQueryHandler{resp: models.QueryResponse{Response: "hi"}}
	handler := NewTeamsHandler(fake)

	body := `{"tenantId":"contoso","from":{"id":"user-1"},"text":"hello"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/teams", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teams", fake.lastReq.Channel)
	assert.Equal(t, "hello", fake.lastReq.Message)
	assert.Equal(t, deterministicID("user-1").String(), fake.lastReq.UserID)
}

func TestTeamsWebhook_MissingFromIDRejected(t *testing.T) {
	fake := &fakeQueryHandler{}
	handler := NewTeamsHandler(fake)

	body := `{"tenantId":"contoso","from":{"id":""},"text":"hello"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/teams", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Webhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTelegramWebhook_Forwards(t *testing.T) {
	fake := &fakeQueryHandler{resp: models.QueryResponse{Response: "hi"}}
	handler := NewTelegramHandler(fake)

	body := `{"tenantId":"acme","message":{"from":{"id":42},"text":"hello there"}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/telegram", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "telegram", fake.lastReq.Channel)
	assert.Equal(t, deterministicID("42").String(), fake.lastReq.UserID)
}

func TestTelegramWebhook_ZeroFromIDRejected(t *testing.T) {
	fake := &fakeQueryHandler{}
	handler := NewTelegramHandler(fake)

	body := `{"tenantId":"acme","message":{"from":{"id":0},"text":"hello"}}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/telegram", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Webhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func whatsAppBody() []byte {
	payload := map[string]interface{}{
		"entry": []map[string]interface{}{{
			"changes": []map[string]interface{}{{
				"value": map[string]interface{}{
					"metadata": map[string]interface{}{"display_phone_number": "15550001111"},
					"messages": []map[string]interface{}{{
						"from": "15559998888",
						"text": map[string]interface{}{"body": "hello"},
					}},
				},
			}},
		}},
	}
	data, _ := json.Marshal(payload)
	return data
}

func TestWhatsAppWebhook_ForwardsWithoutSecret(t *testing.T) {
	fake := &fakeQueryHandler{resp: models.QueryResponse{Response: "hi"}}
	handler := NewWhatsAppHandler(fake, "")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader(whatsAppBody()))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "whatsapp", fake.lastReq.Channel)
	assert.Equal(t, "hello", fake.lastReq.Message)
}

func TestWhatsAppWebhook_RejectsBadSignature(t *testing.T) {
	fake := &fakeQueryHandler{}
	handler := NewWhatsAppHandler(fake, "shhh")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader(whatsAppBody()))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")

	handler.Webhook(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWhatsAppWebhook_AcceptsValidSignature(t *testing.T) {
	fake := &fakeQueryHandler{resp: models.QueryResponse{Response: "hi"}}
	handler := NewWhatsAppHandler(fake, "shhh")

	body := whatsAppBody()
	mac := hmac.New(sha256.New, []byte("shhh"))
	mac.Write(body)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Hub-Signature-256", sig)

	handler.Webhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "whatsapp", fake.lastReq.Channel)
}
