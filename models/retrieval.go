package models

import "github.com/google/uuid"

// CorpusChunk is a chunk as seen by the per-request retriever: the chunk
// store's row plus whatever columns metadata its document carries.
type CorpusChunk struct {
	ChunkID      uuid.UUID
	DocumentID   uuid.UUID
	Content      string
	ChunkIndex   int
	Page         *int
	ChapterNum   *int
	ChapterTitle string
	Columns      []string  // non-nil only for tabular documents
	Embedding    []float64 // populated only where the caller asked for it (e.g. reindex)
}

// Candidate is a scored retrieval result produced by the hybrid retriever.
type Candidate struct {
	Chunk CorpusChunk
	Score float64
}
