package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_SensitiveRefusal(t *testing.T) {
	plan := Classify("What is the ethnicity of Akinkuolie, Sarah?", "")
	assert.Equal(t, IntentSensitiveRefusal, plan.Intent)
}

func TestClassify_ChapterNav(t *testing.T) {
	plan := Classify("next chapter after chapter 2", "")
	assert.Equal(t, IntentChapterNav, plan.Intent)
	assert.Equal(t, 2, plan.ChapterBase)
}

func TestClassify_ChapterCount(t *testing.T) {
	plan := Classify("How many chapters are there?", "")
	assert.Equal(t, IntentChapterCount, plan.Intent)
}

func TestClassify_ChapterSummary(t *testing.T) {
	plan := Classify("give me a summary of chapter 3", "")
	assert.Equal(t, IntentChapterSummary, plan.Intent)
	assert.Equal(t, 3, plan.ChapterSummaryNum)
}

func TestClassify_ChapterTitles(t *testing.T) {
	plan := Classify("list chapter titles", "")
	assert.Equal(t, IntentChapterTitles, plan.Intent)
	assert.False(t, plan.ChapterTitlesNSet)
}

func TestClassify_ListRequestFirst(t *testing.T) {
	plan := Classify("first 3 processes of project management", "")
	assert.Equal(t, IntentListRequest, plan.Intent)
	assert.Equal(t, ListModeFirst, plan.ListMode)
	assert.Equal(t, 3, plan.ListN)
	assert.Equal(t, "project management", plan.ListTopic)
}

func TestClassify_ListRequestNext(t *testing.T) {
	plan := Classify("next 2", "")
	assert.Equal(t, IntentListRequest, plan.Intent)
	assert.Equal(t, ListModeNext, plan.ListMode)
	assert.Equal(t, 2, plan.ListN)
	assert.Equal(t, "", plan.ListTopic)
}

func TestClassify_TabularField(t *testing.T) {
	plan := Classify("What is the salary of Akinkuolie, Sarah?", "")
	assert.Equal(t, IntentTabularField, plan.Intent)
	assert.Equal(t, "salary", plan.Field)
	assert.Equal(t, "Akinkuolie, Sarah", plan.Person)
}

func TestClassify_TabularField_PronounReusesLastPerson(t *testing.T) {
	plan := Classify("What is her department?", "Akinkuolie, Sarah")
	assert.Equal(t, IntentTabularField, plan.Intent)
	assert.Equal(t, "department", plan.Field)
	assert.Equal(t, "Akinkuolie, Sarah", plan.Person)
}

func TestClassify_PolicySummary(t *testing.T) {
	plan := Classify("What is the policy on currency conversion of the unwithdrawn loan amount?", "")
	assert.Equal(t, IntentPolicySummary, plan.Intent)
}

func TestClassify_Generic(t *testing.T) {
	plan := Classify("What are your business hours?", "")
	assert.Equal(t, IntentGeneric, plan.Intent)
}

func TestLooksLikePerson(t *testing.T) {
	assert.True(t, LooksLikePerson("Akinkuolie, Sarah"))
	assert.True(t, LooksLikePerson("Jane Doe"))
	assert.False(t, LooksLikePerson("chapter management"))
	assert.False(t, LooksLikePerson("room 204"))
}
