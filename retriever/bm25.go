// Package retriever implements C6: BM25-lite keyword scoring, an in-memory
// dense heuristic, exact-substring pre-promotion, and reciprocal rank
// fusion — grounded on original_source/ai_core/services/rag_service.py's
// BM25Lite and HybridRetriever classes.
package retriever

import (
	"math"
	"strings"
)

// bm25lite is BM25 with k1=1.5, b=0.75, whitespace tokenization, and a
// single-term IDF approximation (constant across terms, not per-term
// document-frequency-based) — the simplification the original makes.
type bm25lite struct {
	docs  []string
	toks  [][]string
	avgdl float64
}

func newBM25(docs []string) *bm25lite {
	b := &bm25lite{docs: docs}
	total := 0
	for _, d := range docs {
		toks := tokenize(d)
		b.toks = append(b.toks, toks)
		total += len(toks)
	}
	if len(docs) > 0 {
		b.avgdl = float64(total) / float64(len(docs))
	}
	return b
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// score returns a BM25 score per document for the given query, using the
// same single-term IDF approximation as the original: a constant
// log((N-1+0.5)/(1+0.5)) across all terms rather than a true per-term IDF.
func (b *bm25lite) score(query string, k1, bParam float64) []float64 {
	n := len(b.docs)
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}
	idf := math.Log((float64(n) - 1 + 0.5) / (1 + 0.5))
	qTerms := tokenize(query)
	for i, toks := range b.toks {
		dl := float64(len(toks))
		if dl == 0 {
			continue
		}
		counts := make(map[string]int)
		for _, t := range toks {
			counts[t]++
		}
		var s float64
		for _, qt := range qTerms {
			f := float64(counts[qt])
			if f == 0 {
				continue
			}
			denom := f + k1*(1-bParam+bParam*dl/maxFloat(b.avgdl, 1))
			s += idf * (f * (k1 + 1)) / denom
		}
		scores[i] = s
	}
	return scores
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
