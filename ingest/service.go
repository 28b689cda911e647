// Package ingest implements the write side of C1-C5: extract, chunk,
// embed, persist chunks+embeddings, upsert the vector index side channel,
// and write a best-effort metadata sidecar — grounded on
// original_source/ai_core/services/document_service.py's process_and_store
// / process_rows_and_store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ragcore/ragcore/chunk"
	"github.com/ragcore/ragcore/embedder"
	"github.com/ragcore/ragcore/extract"
	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/ragerrors"
	"github.com/ragcore/ragcore/store"
	"github.com/ragcore/ragcore/vectorindex"
)

type Options struct {
	ChunkOpts    chunk.Options
	StoragePath  string
	MaxFileBytes int64
}

func (o Options) withDefaults() Options {
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = 10 * 1024 * 1024
	}
	return o
}

type Service struct {
	Chunks      *store.ChunkStore
	Embedder    embedder.Embedder
	VectorIndex vectorindex.Index
	Opts        Options
}

func New(chunks *store.ChunkStore, emb embedder.Embedder, vec vectorindex.Index, opts Options) *Service {
	return &Service{Chunks: chunks, Embedder: emb, VectorIndex: vec, Opts: opts.withDefaults()}
}

func previewOf(s string) string {
	if len(s) > 500 {
		return s[:500]
	}
	return s
}

// IngestText implements process_and_store for a text-bearing document: it
// chunks the content sentence-aware, embeds, persists, upserts the vector
// index side channel, and writes the metadata sidecar.
func (s *Service) IngestText(ctx context.Context, tenantID uuid.UUID, title, content, kbID string) (*models.IngestResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ragerrors.NewValidationError("content", "must not be empty")
	}

	kb, err := s.Chunks.EnsureDefaultKnowledgeBase(tenantID, kbID)
	if err != nil {
		return nil, err
	}

	doc, err := s.Chunks.CreateDocument(kb.ID, title, previewOf(content), models.DocumentMeta{})
	if err != nil {
		return nil, err
	}

	chunks := chunk.BuildChunks(content, s.Opts.ChunkOpts)
	if len(chunks) == 0 {
		_ = s.Chunks.RollbackDocument(doc.ID)
		return nil, ragerrors.NewValidationError("content", "produced no chunks")
	}

	if err := s.embedChunkAndStore(ctx, tenantID, doc.ID, chunks, nil); err != nil {
		_ = s.Chunks.RollbackDocument(doc.ID)
		return nil, err
	}

	if err := s.Chunks.FinalizeDocument(doc.ID, models.DocumentStatusIndexed, len(chunks)); err != nil {
		_ = s.Chunks.RollbackDocument(doc.ID)
		return nil, err
	}

	s.writeSidecar(tenantID, doc.ID, title, len(chunks), nil)

	return &models.IngestResponse{DocumentID: doc.ID.String(), ChunkCount: len(chunks), Status: models.DocumentStatusIndexed}, nil
}

// IngestFile implements the multipart ingest variant: filename extension
// selects between the tabular path (.csv) and the text path (C1).
func (s *Service) IngestFile(ctx context.Context, tenantID uuid.UUID, title, filename string, data []byte, kbID string) (*models.IngestResponse, error) {
	if int64(len(data)) > s.Opts.MaxFileBytes {
		return nil, ragerrors.NewValidationError("file", "exceeds maximum allowed size")
	}
	if len(data) == 0 {
		return nil, ragerrors.NewValidationError("file", "must not be empty")
	}

	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		rows, err := extract.Rows(filename, data)
		if err != nil || len(rows) == 0 {
			return nil, ragerrors.NewValidationError("file", "could not parse CSV rows")
		}
		return s.ingestRows(ctx, tenantID, title, rows, kbID)
	}

	text, err := extract.Text(filename, data)
	if err != nil {
		return nil, &ragerrors.StorageError{Op: "extract_text", Err: err}
	}
	return s.IngestText(ctx, tenantID, title, text, kbID)
}

// ingestRows implements the tabular path of C2: the first row is the
// header; remaining rows are one-chunk-per-row, carrying no chapter
// metadata, with the normalized header stored on the document.
func (s *Service) ingestRows(ctx context.Context, tenantID uuid.UUID, title string, rows []string, kbID string) (*models.IngestResponse, error) {
	header, err := parseCSVFields(rows[0])
	if err != nil || len(header) == 0 {
		return nil, ragerrors.NewValidationError("file", "missing CSV header row")
	}
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = chunk.NormalizeHeader(h)
	}

	dataRows := rows[1:]
	if len(dataRows) == 0 {
		return nil, ragerrors.NewValidationError("file", "no data rows after header")
	}

	kb, err := s.Chunks.EnsureDefaultKnowledgeBase(tenantID, kbID)
	if err != nil {
		return nil, err
	}

	doc, err := s.Chunks.CreateDocument(kb.ID, title, previewOf(strings.Join(dataRows, "\n")), models.DocumentMeta{Columns: normalized})
	if err != nil {
		return nil, err
	}

	rowChunks := make([]chunk.Chunk, len(dataRows))
	for i, r := range dataRows {
		rowChunks[i] = chunk.Chunk{Content: r}
	}

	if err := s.embedChunkAndStore(ctx, tenantID, doc.ID, rowChunks, normalized); err != nil {
		_ = s.Chunks.RollbackDocument(doc.ID)
		return nil, err
	}

	if err := s.Chunks.FinalizeDocument(doc.ID, models.DocumentStatusIndexed, len(rowChunks)); err != nil {
		_ = s.Chunks.RollbackDocument(doc.ID)
		return nil, err
	}

	s.writeSidecar(tenantID, doc.ID, title, len(rowChunks), normalized)

	return &models.IngestResponse{DocumentID: doc.ID.String(), ChunkCount: len(rowChunks), Status: models.DocumentStatusIndexed}, nil
}

func (s *Service) embedChunkAndStore(ctx context.Context, tenantID, documentID uuid.UUID, chunks []chunk.Chunk, columns []string) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.Embedder.Embed(ctx, texts)
	if err != nil {
		return &ragerrors.ExternalServiceError{Service: "embedder", Err: err}
	}
	if len(vectors) != len(chunks) {
		return &ragerrors.ExternalServiceError{Service: "embedder", Err: fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors))}
	}

	inputs := make([]store.ChunkInput, len(chunks))
	for i, c := range chunks {
		inputs[i] = store.ChunkInput{ID: uuid.New(), Content: c.Content, Embedding: vectors[i], Meta: c.Meta}
	}
	ids, err := s.Chunks.InsertChunks(documentID, inputs)
	if err != nil {
		return err
	}

	if s.VectorIndex != nil {
		items := make([]vectorindex.UpsertItem, len(chunks))
		for i, c := range chunks {
			items[i] = vectorindex.UpsertItem{
				Vector: vectors[i],
				Payload: vectorindex.Payload{
					ChunkID:      ids[i],
					DocumentID:   documentID,
					Content:      c.Content,
					ChunkIndex:   i,
					ChapterNum:   c.Meta.ChapterNum,
					ChapterTitle: c.Meta.ChapterTitle,
					Page:         c.Meta.Page,
				},
			}
		}
		if err := s.VectorIndex.Upsert(ctx, tenantID, items); err != nil {
			log.Printf("ingest: vector index upsert failed, chunk store remains authoritative: %v", err)
		}
	}

	return nil
}

type sidecarMeta struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	ChunkCount int      `json:"chunk_count"`
	Columns    []string `json:"columns,omitempty"`
}

// writeSidecar writes {base_path}/tenant_{t}/documents/{d}/metadata.json;
// best-effort, ingest never fails on sidecar write failure.
func (s *Service) writeSidecar(tenantID, documentID uuid.UUID, title string, chunkCount int, columns []string) {
	if s.Opts.StoragePath == "" {
		return
	}
	dir := filepath.Join(s.Opts.StoragePath, fmt.Sprintf("tenant_%s", tenantID), "documents", documentID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("ingest: sidecar mkdir failed (best-effort): %v", err)
		return
	}
	data, err := json.MarshalIndent(sidecarMeta{
		DocumentID: documentID.String(),
		Title:      title,
		ChunkCount: chunkCount,
		Columns:    columns,
	}, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o644); err != nil {
		log.Printf("ingest: sidecar write failed (best-effort): %v", err)
	}
}
