package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

func pmProcessesCandidates() []models.Candidate {
	content := "- Initiating\n- Planning\n- Executing\n- Monitoring\n- Closing"
	return []models.Candidate{{Chunk: models.CorpusChunk{Content: content}}}
}

// spec.md §8 scenario 5: list continuation, three turns.
// Turn 1: "first 3 processes of project management" -> items 1-3.
// Turn 2 (same conversation): "next 2" -> items 4-5.
// Turn 3: "next 1" -> past end of the known list; documented policy applies.
func TestList_ThreeTurnContinuation(t *testing.T) {
	deps := Deps{Candidates: pmProcessesCandidates()}

	// Turn 1.
	plan1 := planner.Plan{Intent: planner.IntentListRequest, ListMode: planner.ListModeFirst, ListN: 3, ListTopic: "processes of project management"}
	r1 := List(plan1, models.ConversationContext{}, deps)
	require.False(t, r1.Response.RequiresHuman)
	assert.Equal(t, "Here are the first 3 items for processes of project management:\n1. Initiating\n2. Planning\n3. Executing", r1.Response.Response)
	assert.Equal(t, 3, r1.Context.LastListIndex)
	assert.Equal(t, "processes of project management", r1.Context.LastListTopic)

	// Turn 2: "next 2" carries no topic, reuses conversation memory.
	plan2 := planner.Plan{Intent: planner.IntentListRequest, ListMode: planner.ListModeNext, ListN: 2}
	r2 := List(plan2, r1.Context, deps)
	require.False(t, r2.Response.RequiresHuman)
	assert.Equal(t, "Here are the next 2 items for processes of project management:\n4. Monitoring\n5. Closing", r2.Response.Response)
	assert.Equal(t, 5, r2.Context.LastListIndex)

	// Turn 3: "next 1" is past the end of the known 5-item list.
	plan3 := planner.Plan{Intent: planner.IntentListRequest, ListMode: planner.ListModeNext, ListN: 1}
	r3 := List(plan3, r2.Context, deps)
	assert.False(t, r3.Response.RequiresHuman)
	assert.Equal(t, 0.8, r3.Response.Confidence)
	assert.Equal(t, "There are no further items for processes of project management.", r3.Response.Response)
}

func TestList_NoTopicAsksForOne(t *testing.T) {
	deps := Deps{Candidates: pmProcessesCandidates()}
	plan := planner.Plan{Intent: planner.IntentListRequest, ListMode: planner.ListModeFirst, ListN: 3}

	result := List(plan, models.ConversationContext{}, deps)

	assert.False(t, result.Response.RequiresHuman)
	assert.Contains(t, result.Response.Response, "Which topic")
}

func TestList_NoItemsFound(t *testing.T) {
	deps := Deps{Candidates: []models.Candidate{{Chunk: models.CorpusChunk{Content: "no bullets here"}}}}
	plan := planner.Plan{Intent: planner.IntentListRequest, ListMode: planner.ListModeFirst, ListN: 3, ListTopic: "widgets"}

	result := List(plan, models.ConversationContext{}, deps)

	assert.True(t, result.Response.RequiresHuman)
}
