// Package vectorindex implements C5: a tenant-partitioned cosine similarity
// index over chunk embeddings, best-effort and eventually consistent. The
// chunk store remains authoritative; every operation here degrades
// gracefully on failure per spec §4.5.
package vectorindex

import (
	"context"

	"github.com/google/uuid"
)

// Payload is what gets upserted alongside a vector; mirrors the original
// Qdrant payload shape (tenant_id, document_id, content, chunk_index,
// chapter_num, chapter_title, page).
type Payload struct {
	ChunkID      uuid.UUID
	DocumentID   uuid.UUID
	Content      string
	ChunkIndex   int
	ChapterNum   *int
	ChapterTitle string
	Page         *int
}

// SearchHit is one cosine-search result.
type SearchHit struct {
	ChunkID uuid.UUID
	Score   float64
	Payload Payload
}

// Index is the C5 contract. Implementations must be safe for concurrent use.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, tenantID uuid.UUID, vectors []UpsertItem) error
	Search(ctx context.Context, queryVec []float64, tenantID uuid.UUID, topK int, scoreThreshold float64) ([]SearchHit, error)
	ScrollChapters(ctx context.Context, tenantID uuid.UUID, limit int) ([]Payload, error)
	DeleteDocument(ctx context.Context, tenantID, documentID uuid.UUID) error
}

// UpsertItem pairs a vector with its payload for Upsert.
type UpsertItem struct {
	Vector  []float64
	Payload Payload
}
