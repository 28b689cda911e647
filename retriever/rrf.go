package retriever

import "sort"

// rrfFuse performs reciprocal rank fusion: for every list l and rank r
// (1-based), add 1/(k+r) to the candidate's score; returns indices sorted
// descending by fused score, truncated to topK.
//
// Monotonicity holds by construction: a document ranked >= in both input
// lists accumulates >= 1/(k+r) contributions from each list than any
// document it dominates in both, so its fused sum is >=.
func rrfFuse(lists [][]int, k int, topK int) []int {
	if k <= 0 {
		k = 60
	}
	scores := make(map[int]float64)
	order := make([]int, 0)
	for _, list := range lists {
		for rank, idx := range list {
			if _, seen := scores[idx]; !seen {
				order = append(order, idx)
			}
			scores[idx] += 1.0 / float64(k+rank+1)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if topK > 0 && topK < len(order) {
		order = order[:topK]
	}
	return order
}
