package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

func chapterCorpus() []models.CorpusChunk {
	return []models.CorpusChunk{
		{Content: "Chapter 1. Intro\nWelcome to the guide."},
		{Content: "Chapter 2. Setup\nInstall the toolchain first."},
		{Content: "Chapter 3. Usage\nRun the binary with flags."},
	}
}

// spec.md §8 scenario 4: chapter navigation.
func TestChapterNav_NextChapter(t *testing.T) {
	corpus := chapterCorpus()
	deps := Deps{
		Corpus: corpus,
		Candidates: []models.Candidate{
			{Chunk: corpus[0]}, {Chunk: corpus[1]}, {Chunk: corpus[2]},
		},
	}
	plan := planner.Plan{Intent: planner.IntentChapterNav, ChapterBase: 2}

	result := ChapterNav(plan, models.ConversationContext{}, deps)

	assert.Equal(t, "The next chapter is Chapter 3: Usage.", result.Response.Response)
	assert.False(t, result.Response.RequiresHuman)
	assert.NotNil(t, result.Context.LastChapter)
	assert.Equal(t, 3, *result.Context.LastChapter)
	assert.Equal(t, "Usage", result.Context.LastChapterTitle)
}

func TestChapterNav_NoNextChapter(t *testing.T) {
	corpus := chapterCorpus()
	deps := Deps{Corpus: corpus}
	plan := planner.Plan{Intent: planner.IntentChapterNav, ChapterBase: 3}

	result := ChapterNav(plan, models.ConversationContext{}, deps)

	assert.True(t, result.Response.RequiresHuman)
	assert.Equal(t, float64(0), result.Response.Confidence)
}

func TestChapterCount(t *testing.T) {
	deps := Deps{Corpus: chapterCorpus()}

	result := ChapterCount(context.Background(), models.ConversationContext{}, deps)

	assert.Equal(t, "There are 3 chapters in the uploaded content.", result.Response.Response)
}

func TestChapterTitles_SortedAndCapped(t *testing.T) {
	deps := Deps{Corpus: chapterCorpus()}
	plan := planner.Plan{Intent: planner.IntentChapterTitles, ChapterTitlesN: 2, ChapterTitlesNSet: true}

	result := ChapterTitles(context.Background(), plan, models.ConversationContext{}, deps)

	assert.Equal(t, "Chapters:\nChapter 1: Intro\nChapter 2: Setup", result.Response.Response)
}

func TestChapterSummary_FallbackWithoutGenerator(t *testing.T) {
	corpus := []models.CorpusChunk{
		{Content: "Chapter 3 covers usage patterns in depth.", ChapterNum: intPtr(3)},
	}
	deps := Deps{Corpus: corpus}
	plan := planner.Plan{Intent: planner.IntentChapterSummary, ChapterSummaryNum: 3}

	result := ChapterSummary(context.Background(), plan, models.ConversationContext{}, deps)

	assert.False(t, result.Response.RequiresHuman)
	assert.Contains(t, result.Response.Response, "Summary of Chapter 3")
}

func TestChapterSummary_NoMatchingContent(t *testing.T) {
	deps := Deps{Corpus: chapterCorpus()}
	plan := planner.Plan{Intent: planner.IntentChapterSummary, ChapterSummaryNum: 9}

	result := ChapterSummary(context.Background(), plan, models.ConversationContext{}, deps)

	assert.True(t, result.Response.RequiresHuman)
}

func intPtr(n int) *int { return &n }
