package strategy

import "github.com/ragcore/ragcore/models"

// refusalText is fixed per §4.8; the guard never consults retrieval state,
// so the same query always produces the same refusal (refusal idempotence).
const refusalText = "I can't determine or infer a person's protected characteristics. Please consult appropriate, consented records or escalate to a human agent."

// Sensitive implements S-sensitive: a fixed refusal, zero confidence,
// requires_human, no citations, and no context mutation.
func Sensitive(convCtx models.ConversationContext) Result {
	return Result{
		Response: models.QueryResponse{
			Response:      refusalText,
			Citations:     nil,
			Confidence:    0,
			RequiresHuman: true,
		},
		Context: convCtx,
	}
}
