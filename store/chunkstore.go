package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/ragerrors"
)

// ChunkStore implements C4: persists documents, chunks, embeddings and
// schema metadata, tenant-scoped. All writes are transactional.
type ChunkStore struct {
	db *gorm.DB
}

func NewChunkStore(db *gorm.DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// EnsureDefaultKnowledgeBase resolves the knowledge base an ingest should
// write to: the caller-provided id if it exists, else the tenant's oldest
// KB, else a newly created "Default" KB. It lazily seeds a placeholder
// tenant when tenantID is unknown, mirroring the original's dev-friendly
// auto-seed behavior.
func (s *ChunkStore) EnsureDefaultKnowledgeBase(tenantID uuid.UUID, providedKBID string) (*models.KnowledgeBase, error) {
	var kb models.KnowledgeBase

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := tx.First(&tenant, "id = ?", tenantID).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			tenant = models.Tenant{
				ID:               tenantID,
				Name:             "Seeded Tenant",
				Domain:           fmt.Sprintf("seeded-%s", tenantID.String()),
				SubscriptionTier: "BASIC",
				Settings:         datatypes.JSON([]byte(`{}`)),
			}
			if err := tx.Create(&tenant).Error; err != nil {
				return err
			}
		}

		if providedKBID != "" {
			if id, err := uuid.Parse(providedKBID); err == nil {
				var existing models.KnowledgeBase
				if err := tx.First(&existing, "id = ? AND tenant_id = ?", id, tenantID).Error; err == nil {
					kb = existing
					return nil
				}
			}
		}

		var existing models.KnowledgeBase
		err := tx.Where("tenant_id = ?", tenantID).Order("created_at asc").First(&existing).Error
		if err == nil {
			kb = existing
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		kb = models.KnowledgeBase{
			TenantID:      tenantID,
			Name:          "Default",
			Status:        "ACTIVE",
			DocumentCount: 0,
			LastUpdatedAt: time.Now(),
		}
		return tx.Create(&kb).Error
	})
	if err != nil {
		return nil, &ragerrors.StorageError{Op: "ensure_default_knowledge_base", Err: err}
	}
	return &kb, nil
}

// CreateDocument inserts a PROCESSING document row.
func (s *ChunkStore) CreateDocument(kbID uuid.UUID, title, preview string, meta models.DocumentMeta) (*models.Document, error) {
	metaBytes, _ := json.Marshal(meta)
	doc := &models.Document{
		KnowledgeBaseID: kbID,
		Title:           title,
		ContentPreview:  preview,
		Metadata:        datatypes.JSON(metaBytes),
		Status:          models.DocumentStatusProcessing,
	}
	if err := s.db.Create(doc).Error; err != nil {
		return nil, &ragerrors.StorageError{Op: "create_document", Err: err}
	}
	return doc, nil
}

// ChunkInput is one chunk's content plus its per-chunk metadata, prepared by
// the ingest pipeline (chunker + embedder) before persistence. ID is
// generated by InsertChunks when left at its zero value.
type ChunkInput struct {
	ID        uuid.UUID
	Content   string
	Embedding []float64
	Meta      models.ChunkMeta
}

// InsertChunks persists dense chunk_index values [0, len(chunks)) for
// document and returns the persisted row IDs in the same order as chunks,
// so the caller can key a matching vector-index upsert to the exact same
// IDs (required for Qdrant's point-ID-based idempotent replace on reindex).
// The whole batch commits or rolls back atomically.
func (s *ChunkStore) InsertChunks(documentID uuid.UUID, chunks []ChunkInput) ([]uuid.UUID, error) {
	rows := make([]models.KnowledgeChunk, 0, len(chunks))
	ids := make([]uuid.UUID, len(chunks))
	for i, c := range chunks {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		ids[i] = id

		embBytes, err := json.Marshal(c.Embedding)
		if err != nil {
			return nil, &ragerrors.StorageError{Op: "insert_chunks", Err: err}
		}
		metaBytes, err := json.Marshal(c.Meta)
		if err != nil {
			return nil, &ragerrors.StorageError{Op: "insert_chunks", Err: err}
		}
		rows = append(rows, models.KnowledgeChunk{
			ID:         id,
			DocumentID: documentID,
			Content:    c.Content,
			ChunkIndex: i,
			Embedding:  datatypes.JSON(embBytes),
			Metadata:   datatypes.JSON(metaBytes),
		})
	}
	if len(rows) == 0 {
		return ids, nil
	}
	if err := s.db.CreateInBatches(rows, 200).Error; err != nil {
		return nil, &ragerrors.StorageError{Op: "insert_chunks", Err: err}
	}
	return ids, nil
}

// FinalizeDocument marks a document INDEXED (or FAILED) with its final
// chunk count, and bumps the owning knowledge base's document_count and
// last_updated_at when transitioning to INDEXED for the first time.
func (s *ChunkStore) FinalizeDocument(documentID uuid.UUID, status string, chunkCount int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := tx.First(&doc, "id = ?", documentID).Error; err != nil {
			return err
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":      status,
			"chunk_count": chunkCount,
		}
		if status == models.DocumentStatusIndexed {
			updates["indexed_at"] = now
		}
		if err := tx.Model(&models.Document{}).Where("id = ?", documentID).Updates(updates).Error; err != nil {
			return err
		}
		if status == models.DocumentStatusIndexed && doc.Status != models.DocumentStatusIndexed {
			return tx.Model(&models.KnowledgeBase{}).Where("id = ?", doc.KnowledgeBaseID).
				Updates(map[string]interface{}{
					"document_count":  gorm.Expr("document_count + 1"),
					"last_updated_at": now,
				}).Error
		}
		return nil
	})
}

// RollbackDocument marks a document FAILED with zero chunks and deletes any
// chunks that were inserted before the failing step, keeping C4's "failure
// of any step rolls back" guarantee even though Postgres JSON columns don't
// give us a single enclosing transaction across chunked embedding batches.
func (s *ChunkStore) RollbackDocument(documentID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&models.KnowledgeChunk{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Document{}).Where("id = ?", documentID).
			Updates(map[string]interface{}{"status": models.DocumentStatusFailed, "chunk_count": 0}).Error
	})
}

// DeleteDocument removes a document and its chunks, scoped to tenant so one
// tenant can never delete another's document by guessing an id.
func (s *ChunkStore) DeleteDocument(tenantID, documentID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		err := tx.Table("ragcore.documents AS d").
			Select("d.*").
			Joins("JOIN ragcore.knowledge_bases kb ON kb.id = d.knowledge_base_id").
			Where("d.id = ? AND kb.tenant_id = ?", documentID, tenantID).
			First(&doc).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return &ragerrors.NotFoundError{Resource: "document", ID: documentID.String()}
			}
			return err
		}
		if err := tx.Where("document_id = ?", documentID).Delete(&models.KnowledgeChunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, "id = ?", documentID).Error
	})
}

// DocumentChunks returns every chunk of one document, used by the admin
// reindex route to re-upsert a document's vectors without re-embedding.
func (s *ChunkStore) DocumentChunks(documentID uuid.UUID) ([]models.CorpusChunk, error) {
	var rows []models.KnowledgeChunk
	if err := s.db.Where("document_id = ?", documentID).Order("chunk_index asc").Find(&rows).Error; err != nil {
		return nil, &ragerrors.StorageError{Op: "document_chunks", Err: err}
	}
	out := make([]models.CorpusChunk, 0, len(rows))
	for _, r := range rows {
		var cm models.ChunkMeta
		_ = json.Unmarshal(r.Metadata, &cm)
		var emb []float64
		_ = json.Unmarshal(r.Embedding, &emb)
		out = append(out, models.CorpusChunk{
			ChunkID:      r.ID,
			DocumentID:   r.DocumentID,
			Content:      r.Content,
			ChunkIndex:   r.ChunkIndex,
			Page:         cm.Page,
			ChapterNum:   cm.ChapterNum,
			ChapterTitle: cm.ChapterTitle,
			Embedding:    emb,
		})
	}
	return out, nil
}

// ListChunks returns up to limit chunks for tenant, most-recently-created
// first, joined with their document's columns metadata (spec §4.11 step 4).
func (s *ChunkStore) ListChunks(tenantID uuid.UUID, limit int) ([]models.CorpusChunk, error) {
	type row struct {
		models.KnowledgeChunk
		DocMetadata datatypes.JSON
	}
	var rows []row
	err := s.db.Table("ragcore.knowledge_chunks AS c").
		Select("c.*, d.metadata AS doc_metadata").
		Joins("JOIN ragcore.documents d ON d.id = c.document_id").
		Joins("JOIN ragcore.knowledge_bases kb ON kb.id = d.knowledge_base_id").
		Where("kb.tenant_id = ?", tenantID).
		Order("c.created_at desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, &ragerrors.StorageError{Op: "list_chunks", Err: err}
	}

	out := make([]models.CorpusChunk, 0, len(rows))
	for _, r := range rows {
		var cm models.ChunkMeta
		_ = json.Unmarshal(r.Metadata, &cm)
		var dm models.DocumentMeta
		_ = json.Unmarshal(r.DocMetadata, &dm)
		out = append(out, models.CorpusChunk{
			ChunkID:      r.ID,
			DocumentID:   r.DocumentID,
			Content:      r.Content,
			ChunkIndex:   r.ChunkIndex,
			Page:         cm.Page,
			ChapterNum:   cm.ChapterNum,
			ChapterTitle: cm.ChapterTitle,
			Columns:      dm.Columns,
		})
	}
	return out, nil
}

// ChapterInfo is a distinct (chapter_num, chapter_title) pair observed in a
// tenant's chunks.
type ChapterInfo struct {
	ChapterNum   int
	ChapterTitle string
}

// Chapters returns the distinct chapter pairs seen in any chunk of any
// document belonging to tenant. The chapter strategies do not call it: they
// read chapters from the vector index, the request's corpus metadata, or
// the chunk text.
func (s *ChunkStore) Chapters(tenantID uuid.UUID) ([]ChapterInfo, error) {
	chunks, err := s.ListChunks(tenantID, 100000)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]string)
	for _, c := range chunks {
		if c.ChapterNum != nil {
			if _, ok := seen[*c.ChapterNum]; !ok {
				seen[*c.ChapterNum] = c.ChapterTitle
			}
		}
	}
	out := make([]ChapterInfo, 0, len(seen))
	for n, t := range seen {
		out = append(out, ChapterInfo{ChapterNum: n, ChapterTitle: t})
	}
	return out, nil
}
