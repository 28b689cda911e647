package vectorindex

import (
	"context"

	"github.com/google/uuid"
)

// Noop is used when VECTOR_INDEX_URL is unset: dense search falls back to
// the in-memory heuristic entirely (spec §4.3/§6).
type Noop struct{}

func (Noop) EnsureCollection(context.Context) error { return nil }

func (Noop) Upsert(context.Context, uuid.UUID, []UpsertItem) error { return nil }

func (Noop) Search(context.Context, []float64, uuid.UUID, int, float64) ([]SearchHit, error) {
	return nil, nil
}

func (Noop) ScrollChapters(context.Context, uuid.UUID, int) ([]Payload, error) {
	return nil, nil
}

func (Noop) DeleteDocument(context.Context, uuid.UUID, uuid.UUID) error { return nil }
