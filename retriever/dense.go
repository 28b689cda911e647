package retriever

import "strings"

// jaccardDense scores each doc against query by
// 2*Jaccard(query_words, doc_words) + 1/(1+|len(doc)-len(query)|/max(1,len(query))),
// the in-memory heuristic used when no embedding provider is available for
// the per-request retriever's dense list.
func jaccardDense(docs []string, query string) []float64 {
	qWords := wordSet(query)
	qLen := len(query)
	scores := make([]float64, len(docs))
	for i, d := range docs {
		dWords := wordSet(d)
		jaccard := jaccardSim(qWords, dWords)
		lengthSim := 1.0 / (1.0 + absInt(len(d)-qLen)/maxFloat(float64(qLen), 1))
		scores[i] = jaccard*2.0 + lengthSim
	}
	return scores
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func jaccardSim(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func absInt(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}
