package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankOf(order []int, doc int) int {
	for i, d := range order {
		if d == doc {
			return i
		}
	}
	return -1
}

// spec.md §8 RRF monotonicity: a document ranked >= in both input lists is
// ranked >= in the fusion.
func TestRRFFuse_Monotonicity(t *testing.T) {
	listA := []int{0, 1, 2, 3}
	listB := []int{1, 0, 3, 2}

	fused := rrfFuse([][]int{listA, listB}, 60, 0)

	// doc 1 ranks >= doc 2 in both input lists (rank 1 or better vs rank 2 or worse).
	assert.Less(t, rankOf(fused, 1), rankOf(fused, 2))
	// doc 0 ranks >= doc 3 in both input lists.
	assert.Less(t, rankOf(fused, 0), rankOf(fused, 3))
}

func TestRRFFuse_TopKTruncates(t *testing.T) {
	fused := rrfFuse([][]int{{0, 1, 2, 3, 4}}, 60, 2)
	assert.Len(t, fused, 2)
	assert.Equal(t, []int{0, 1}, fused)
}

func TestRRFFuse_DefaultsKWhenNonPositive(t *testing.T) {
	fused := rrfFuse([][]int{{0, 1}}, 0, 0)
	assert.Equal(t, []int{0, 1}, fused)
}
