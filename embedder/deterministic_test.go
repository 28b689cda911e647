package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spec.md §8 embedding dimension invariant.
func TestDeterministic_DimensionMatchesEveryVector(t *testing.T) {
	d := NewDeterministic()
	vectors, err := d.Embed(context.Background(), []string{"hello", "world", ""})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for _, v := range vectors {
		assert.Len(t, v, DeterministicDimension)
		assert.Equal(t, d.Dimension(), len(v))
	}
}

func TestDeterministic_SameTextProducesSameVector(t *testing.T) {
	d := NewDeterministic()
	a, err := d.Embed(context.Background(), []string{"same text"})
	require.NoError(t, err)
	b, err := d.Embed(context.Background(), []string{"same text"})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestDeterministic_DifferentTextProducesDifferentVector(t *testing.T) {
	d := NewDeterministic()
	vectors, err := d.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestCosineSimilarity_IdenticalVectorsIsOne(t *testing.T) {
	v := []float64{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_OrthogonalIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}))
}

func TestCosineSimilarity_MismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1}))
}
