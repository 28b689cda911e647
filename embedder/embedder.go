// Package embedder implements C3: batched embedding with token-budgeted
// batching, and the deterministic fallback used when no provider is
// configured or as a test seam.
package embedder

import "context"

// Embedder maps text to fixed-dimension dense vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}
