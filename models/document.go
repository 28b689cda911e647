package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Document is a single ingested artifact (a file or a pasted blob). For
// tabular ingests, Metadata carries `columns: [normalized_header]`.
type Document struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	KnowledgeBaseID uuid.UUID      `json:"knowledge_base_id" gorm:"type:uuid;not null;index"`
	Title           string         `json:"title" gorm:"not null"`
	ContentPreview  string         `json:"content_preview"`
	SourceURL       string         `json:"source_url"`
	Metadata        datatypes.JSON `json:"metadata" gorm:"column:metadata;type:jsonb;default:'{}'"`
	Status          string         `json:"status" gorm:"default:PROCESSING"` // PROCESSING, INDEXED, FAILED
	ChunkCount      int            `json:"chunk_count" gorm:"default:0"`
	CreatedAt       time.Time      `json:"created_at"`
	IndexedAt       *time.Time     `json:"indexed_at"`
}

func (Document) TableName() string { return "ragcore.documents" }

const (
	DocumentStatusProcessing = "PROCESSING"
	DocumentStatusIndexed    = "INDEXED"
	DocumentStatusFailed     = "FAILED"
)

// DocumentMeta is the typed shape of Document.Metadata. Columns is set only
// for tabular ingests; text documents leave it empty.
type DocumentMeta struct {
	Columns []string `json:"columns,omitempty"`
}

// KnowledgeChunk is a contiguous slice of a document's text (or one tabular
// row), independently embedded and retrieved.
//
// Invariants: (document_id, chunk_index) is unique and chunk_index is dense
// in [0, document.chunk_count); embedding length equals the dimension D of
// whichever embedder produced it.
type KnowledgeChunk struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DocumentID uuid.UUID      `json:"document_id" gorm:"type:uuid;not null;uniqueIndex:idx_chunk_doc_index"`
	Content    string         `json:"content" gorm:"not null"`
	ChunkIndex int            `json:"chunk_index" gorm:"not null;uniqueIndex:idx_chunk_doc_index"`
	Embedding  datatypes.JSON `json:"embedding" gorm:"type:jsonb"`
	Metadata   datatypes.JSON `json:"metadata" gorm:"column:metadata;type:jsonb;default:'{}'"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (KnowledgeChunk) TableName() string { return "ragcore.knowledge_chunks" }

// ChunkMeta is the typed shape of KnowledgeChunk.Metadata.
type ChunkMeta struct {
	Page         *int   `json:"page,omitempty"`
	ChapterNum   *int   `json:"chapter_num,omitempty"`
	ChapterTitle string `json:"chapter_title,omitempty"`
}
