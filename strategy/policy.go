package strategy

import (
	"regexp"
	"strings"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

var sentenceSplitRe = regexp.MustCompile(`(?:[.!?])\s+|\n+|;\s+`)

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) > 2 {
			out = append(out, p)
		}
	}
	return out
}

func scoreSentence(sentence string, terms []string) float64 {
	sl := strings.ToLower(sentence)
	hits := 0
	for _, t := range terms {
		if strings.Contains(sl, t) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	lengthBonus := float64(len(sentence)) / 200.0
	if lengthBonus > 1 {
		lengthBonus = 1
	}
	return float64(hits) + lengthBonus
}

type scoredSentence struct {
	score float64
	text  string
}

// Policy implements S-policy: sentence-split the retrieved contexts, score
// by policy-term hit count plus a length bonus, return the top 5 as
// deduplicated bullets.
func Policy(convCtx models.ConversationContext, deps Deps) Result {
	var contexts []string
	for _, c := range deps.Candidates {
		contexts = append(contexts, c.Chunk.Content)
	}

	var scored []scoredSentence
	for _, c := range contexts {
		for _, s := range splitSentences(c) {
			sc := scoreSentence(s, planner.PolicySentenceTerms)
			if sc > 0 {
				scored = append(scored, scoredSentence{score: sc, text: s})
			}
		}
	}

	// Stable sort descending by score, preserving encounter order on ties.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].score > scored[j-1].score; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}

	var bullets []string
	seen := make(map[string]bool)
	for _, s := range scored {
		key := strings.ToLower(s.text)
		if seen[key] {
			continue
		}
		seen[key] = true
		bullets = append(bullets, s.text)
		if len(bullets) >= 5 {
			break
		}
	}

	if len(bullets) == 0 {
		return Result{
			Response: models.QueryResponse{
				Response:      "I couldn't find policy content relevant to this question.",
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	var citations []models.Citation
	for i, c := range contexts {
		if i >= 3 {
			break
		}
		citations = append(citations, models.Citation{
			Source:    "doc",
			Title:     "Document",
			Relevance: 0.9 - float64(i)*0.1,
			Snippet:   snippet(c),
		})
	}

	return Result{
		Response: models.QueryResponse{
			Response:      "Policy summary:\n- " + strings.Join(bullets, "\n- "),
			Citations:     truncateCitations(citations),
			Confidence:    0.85,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}
