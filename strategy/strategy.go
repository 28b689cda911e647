// Package strategy implements C8: one handler per planner intent, each
// permitted to read/write the conversation's mutable context. Grounded on
// original_source/ai_core/api/v1/query.py's per-intent blocks and
// rag_service.py's RAGService.answer.
package strategy

import (
	"context"

	"github.com/google/uuid"

	"github.com/ragcore/ragcore/embedder"
	"github.com/ragcore/ragcore/generator"
	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
	"github.com/ragcore/ragcore/retriever"
	"github.com/ragcore/ragcore/vectorindex"
)

// Deps bundles everything a strategy may need beyond the plan and query.
// Strategies never persist directly; they return a Result and a possibly
// mutated ConversationContext, leaving persistence to the orchestrator.
type Deps struct {
	Corpus      []models.CorpusChunk
	Candidates  []models.Candidate
	VectorIndex vectorindex.Index
	Generator   generator.Generator
	Embedder    embedder.Embedder
	Retriever   *retriever.Retriever // used by S-generic's reformulation pass
	TenantID    uuid.UUID
}

// Result is what every strategy returns; Context is the (possibly
// unmodified) conversation context after the strategy ran.
type Result struct {
	Response models.QueryResponse
	Context  models.ConversationContext
}

// maxCitations bounds every strategy's citation list per §4.8.
const maxCitations = 6

func truncateCitations(cs []models.Citation) []models.Citation {
	if len(cs) > maxCitations {
		return cs[:maxCitations]
	}
	return cs
}

func snippet(s string) string {
	if len(s) > 160 {
		return s[:160]
	}
	return s
}

// Dispatch routes a classified Plan to its strategy implementation.
func Dispatch(ctx context.Context, plan planner.Plan, query string, convCtx models.ConversationContext, deps Deps) Result {
	switch plan.Intent {
	case planner.IntentSensitiveRefusal:
		return Sensitive(convCtx)
	case planner.IntentTabularField:
		return Tabular(plan, convCtx, deps)
	case planner.IntentChapterNav:
		return ChapterNav(plan, convCtx, deps)
	case planner.IntentChapterCount:
		return ChapterCount(ctx, convCtx, deps)
	case planner.IntentChapterTitles:
		return ChapterTitles(ctx, plan, convCtx, deps)
	case planner.IntentChapterSummary:
		return ChapterSummary(ctx, plan, convCtx, deps)
	case planner.IntentListRequest:
		return List(plan, convCtx, deps)
	case planner.IntentPolicySummary:
		return Policy(convCtx, deps)
	default:
		return Generic(ctx, query, convCtx, deps)
	}
}
