package strategy

import (
	"context"
	"strings"

	"github.com/ragcore/ragcore/models"
)

// NoInfoSentinel is the fixed reply the Generator is instructed to return
// when the provided context does not ground an answer; S-generic detects it
// to trigger the one-time reformulation pass.
const NoInfoSentinel = "I don't have enough information in the provided context to answer this question."

const genericSystemPrompt = "You answer strictly from the CONTEXT provided below. " +
	"Never use outside knowledge. If the CONTEXT does not contain the answer, reply with exactly: " +
	"\"" + NoInfoSentinel + "\""

const defaultGeneratorTemperature = 0.3

func contextsOf(candidates []models.Candidate, limit int) []string {
	n := len(candidates)
	if n > limit {
		n = limit
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[i].Chunk.Content
	}
	return out
}

func buildCitations(candidates []models.Candidate, limit int) []models.Citation {
	n := len(candidates)
	if n > limit {
		n = limit
	}
	cites := make([]models.Citation, 0, n)
	for i := 0; i < n; i++ {
		cites = append(cites, models.Citation{
			Source:    "doc",
			Title:     "Document",
			Relevance: 0.8,
			Snippet:   snippet(candidates[i].Chunk.Content),
		})
	}
	return cites
}

// Generic implements S-generic: concatenate contexts, generate under a
// strict grounding prompt, and perform one reformulation pass (paraphrase,
// re-retrieve, merge, regenerate) if the Generator returns the sentinel.
func Generic(ctx context.Context, query string, convCtx models.ConversationContext, deps Deps) Result {
	contexts := contextsOf(deps.Candidates, 6)
	citations := truncateCitations(buildCitations(deps.Candidates, 6))

	if len(contexts) == 0 {
		return Result{
			Response: models.QueryResponse{
				Response:      "No relevant context was found to answer this question.",
				Confidence:    0.4,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	if deps.Generator == nil {
		return Result{
			Response: models.QueryResponse{
				Response:      "Based on available knowledge: " + truncate(contexts[0], 300),
				Citations:     citations,
				Confidence:    0.75,
				RequiresHuman: false,
			},
			Context: convCtx,
		}
	}

	answer, err := deps.Generator.Complete(ctx, genericSystemPrompt, userPrompt(query, contexts), defaultGeneratorTemperature)
	if err != nil || strings.TrimSpace(answer) == "" {
		return Result{
			Response: models.QueryResponse{
				Response:      "Based on available knowledge: " + truncate(contexts[0], 300),
				Citations:     citations,
				Confidence:    0.75,
				RequiresHuman: false,
			},
			Context: convCtx,
		}
	}

	if strings.TrimSpace(answer) != NoInfoSentinel {
		return Result{
			Response: models.QueryResponse{
				Response:      answer,
				Citations:     citations,
				Confidence:    0.75,
				RequiresHuman: false,
			},
			Context: convCtx,
		}
	}

	// One reformulation pass: paraphrase, re-retrieve, merge, regenerate.
	if deps.Retriever != nil {
		paraphraseText, err := deps.Generator.Complete(ctx,
			"Produce 3 to 5 short paraphrases of the user question, one per line, no numbering.",
			query, defaultGeneratorTemperature)
		if err == nil {
			paraphrases := splitLines(paraphraseText)
			merged := mergeCandidates(ctx, deps, paraphrases)
			if len(merged) > 0 {
				mergedContexts := contextsOf(merged, 6)
				retryAnswer, err := deps.Generator.Complete(ctx, genericSystemPrompt, userPrompt(query, mergedContexts), defaultGeneratorTemperature)
				if err == nil && strings.TrimSpace(retryAnswer) != "" && strings.TrimSpace(retryAnswer) != NoInfoSentinel {
					return Result{
						Response: models.QueryResponse{
							Response:      retryAnswer,
							Citations:     truncateCitations(buildCitations(merged, 6)),
							Confidence:    0.7,
							RequiresHuman: false,
						},
						Context: convCtx,
					}
				}
			}
		}
	}

	return Result{
		Response: models.QueryResponse{
			Response:      "Based on available knowledge: " + truncate(contexts[0], 300),
			Citations:     citations,
			Confidence:    0.4,
			RequiresHuman: true,
		},
		Context: convCtx,
	}
}

func userPrompt(query string, contexts []string) string {
	return "CONTEXT:\n" + strings.Join(contexts, "\n---\n") + "\n\nQUESTION: " + query
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// mergeCandidates re-retrieves for each paraphrase and merges + deduplicates
// the results by first-200-chars-lowercased content, capped at 20.
func mergeCandidates(ctx context.Context, deps Deps, paraphrases []string) []models.Candidate {
	var merged []models.Candidate
	seen := make(map[string]bool)
	for _, p := range paraphrases {
		hits := deps.Retriever.Retrieve(ctx, p, deps.VectorIndex, deps.TenantID, deps.Embedder)
		for _, h := range hits {
			key := strings.ToLower(h.Chunk.Content)
			if len(key) > 200 {
				key = key[:200]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, h)
		}
	}
	if len(merged) > 20 {
		merged = merged[:20]
	}
	return merged
}
