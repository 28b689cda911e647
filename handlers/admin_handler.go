package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ragcore/ragcore/ragerrors"
	"github.com/ragcore/ragcore/store"
	"github.com/ragcore/ragcore/vectorindex"
)

// AdminHandlers exposes the internal knowledge-base admin routes (delete,
// reindex) gated behind auth.RequireAdmin in the router, per SPEC_FULL.md §C.
type AdminHandlers struct {
	chunks      *store.ChunkStore
	vectorIndex vectorindex.Index
}

func NewAdminHandlers(chunks *store.ChunkStore, vec vectorindex.Index) *AdminHandlers {
	return &AdminHandlers{chunks: chunks, vectorIndex: vec}
}

// DeleteDocument handles DELETE /api/v1/admin/tenants/:tenantId/documents/:documentId.
func (h *AdminHandlers) DeleteDocument(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid tenantId"})
		return
	}
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid documentId"})
		return
	}

	if err := h.chunks.DeleteDocument(tenantID, documentID); err != nil {
		c.JSON(ragerrors.StatusCode(err), gin.H{"detail": err.Error()})
		return
	}

	if err := h.vectorIndex.DeleteDocument(c.Request.Context(), tenantID, documentID); err != nil {
		log.Printf("admin: vector index cleanup failed for document %s, chunk store remains authoritative: %v", documentID, err)
	}

	c.JSON(http.StatusNoContent, nil)
}

// ReindexDocument handles POST /api/v1/admin/tenants/:tenantId/documents/:documentId/reindex:
// re-upserts a document's already-embedded chunks into the vector index side
// channel, for recovery after a vector-index outage (spec §4.5's "best-effort,
// chunk store remains authoritative").
func (h *AdminHandlers) ReindexDocument(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid tenantId"})
		return
	}
	documentID, err := uuid.Parse(c.Param("documentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid documentId"})
		return
	}

	chunks, err := h.chunks.DocumentChunks(documentID)
	if err != nil {
		c.JSON(ragerrors.StatusCode(err), gin.H{"detail": err.Error()})
		return
	}

	items := make([]vectorindex.UpsertItem, 0, len(chunks))
	for i, ch := range chunks {
		if len(ch.Embedding) == 0 {
			continue
		}
		items = append(items, vectorindex.UpsertItem{
			Vector: ch.Embedding,
			Payload: vectorindex.Payload{
				ChunkID:      ch.ChunkID,
				DocumentID:   ch.DocumentID,
				Content:      ch.Content,
				ChunkIndex:   i,
				ChapterNum:   ch.ChapterNum,
				ChapterTitle: ch.ChapterTitle,
				Page:         ch.Page,
			},
		})
	}

	if err := h.vectorIndex.Upsert(c.Request.Context(), tenantID, items); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reindexed": len(items)})
}
