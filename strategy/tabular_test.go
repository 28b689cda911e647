package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

func salaryCorpus() []models.CorpusChunk {
	columns := []string{"employee_name", "department", "salary", "manager", "status"}
	return []models.CorpusChunk{
		{
			Content: `"Akinkuolie, Sarah",Engineering,95000,John Smith,Active`,
			Columns: columns,
		},
		{
			Content: `"Doe, Jane",Marketing,81000,Alice Brown,Active`,
			Columns: columns,
		},
	}
}

// spec.md §8 scenario 1: salary lookup.
func TestTabular_SalaryLookup(t *testing.T) {
	deps := Deps{Corpus: salaryCorpus()}
	plan := planner.Plan{Intent: planner.IntentTabularField, Field: "salary", Person: "Akinkuolie, Sarah"}

	result := Tabular(plan, models.ConversationContext{}, deps)

	assert.Equal(t, "The salary of Akinkuolie, Sarah is $95,000.", result.Response.Response)
	assert.GreaterOrEqual(t, result.Response.Confidence, 0.9)
	assert.False(t, result.Response.RequiresHuman)
	require.Len(t, result.Response.Citations, 1)
	assert.Contains(t, result.Response.Citations[0].Snippet, "Akinkuolie, Sarah")
}

// spec.md §8 scenario 2: unknown person.
func TestTabular_UnknownPerson(t *testing.T) {
	deps := Deps{Corpus: salaryCorpus()}
	plan := planner.Plan{Intent: planner.IntentTabularField, Field: "salary", Person: "Jones, Pat"}

	result := Tabular(plan, models.ConversationContext{}, deps)

	assert.True(t, result.Response.RequiresHuman)
	assert.Equal(t, float64(0), result.Response.Confidence)
	assert.Contains(t, result.Response.Response, "Jones, Pat")
	assert.Contains(t, result.Response.Response, "spelling")
}

func TestTabular_ReusesLastPersonFromContext(t *testing.T) {
	deps := Deps{Corpus: salaryCorpus()}
	plan := planner.Plan{Intent: planner.IntentTabularField, Field: "department"}
	convCtx := models.ConversationContext{LastPerson: "Akinkuolie, Sarah"}

	result := Tabular(plan, convCtx, deps)

	assert.Equal(t, "The department of Akinkuolie, Sarah is Engineering.", result.Response.Response)
}

func TestTabular_NoPersonAsksForOne(t *testing.T) {
	deps := Deps{Corpus: salaryCorpus()}
	plan := planner.Plan{Intent: planner.IntentTabularField, Field: "salary"}

	result := Tabular(plan, models.ConversationContext{}, deps)

	assert.False(t, result.Response.RequiresHuman)
	assert.Equal(t, float64(0), result.Response.Confidence)
	assert.Contains(t, result.Response.Response, "Who are you asking about")
}

func TestTabular_EmptyFieldValue(t *testing.T) {
	columns := []string{"employee_name", "department", "salary"}
	deps := Deps{Corpus: []models.CorpusChunk{
		{Content: `"Lee, Min",Engineering,`, Columns: columns},
	}}
	plan := planner.Plan{Intent: planner.IntentTabularField, Field: "salary", Person: "Lee, Min"}

	result := Tabular(plan, models.ConversationContext{}, deps)

	assert.True(t, result.Response.RequiresHuman)
	assert.Contains(t, result.Response.Response, "not available")
}
