package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ragcore/ragcore/models"
)

// spec.md §8 scenario 3 + the refusal idempotence invariant: the guard never
// consults conversation state, so every call with any context yields the
// same fixed refusal.
func TestSensitive_FixedRefusalRegardlessOfContext(t *testing.T) {
	contexts := []models.ConversationContext{
		{},
		{LastPerson: "Akinkuolie, Sarah"},
		{LastListTopic: "processes", LastListIndex: 3},
	}

	var first models.QueryResponse
	for i, c := range contexts {
		result := Sensitive(c)
		assert.Equal(t, float64(0), result.Response.Confidence)
		assert.True(t, result.Response.RequiresHuman)
		assert.Empty(t, result.Response.Citations)
		if i == 0 {
			first = result.Response
		} else {
			assert.Equal(t, first.Response, result.Response.Response)
		}
	}
}
