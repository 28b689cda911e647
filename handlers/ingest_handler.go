package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ragcore/ragcore/ingest"
	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/ragerrors"
)

type IngestHandlers struct {
	ingest *ingest.Service
}

func NewIngestHandlers(svc *ingest.Service) *IngestHandlers {
	return &IngestHandlers{ingest: svc}
}

// IngestJSON handles POST /api/v1/ingest, the JSON-content ingest variant.
func (h *IngestHandlers) IngestJSON(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tenantID, err := parseTenantID(req.TenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.ingest.IngestText(c.Request.Context(), tenantID, req.Title, req.Content, req.KnowledgeBaseID)
	if err != nil {
		c.JSON(ragerrors.StatusCode(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// IngestFile handles POST /api/v1/ingest/file, the multipart ingest variant
// (10 MiB limit enforced by the router's MaxMultipartMemory plus the
// service's own MaxFileBytes check).
func (h *IngestHandlers) IngestFile(c *gin.Context) {
	tenantID, err := parseTenantID(c.PostForm("tenantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	title := c.PostForm("title")
	kbID := c.PostForm("knowledgeBaseId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file field is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not open uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read uploaded file"})
		return
	}

	if title == "" {
		title = fileHeader.Filename
	}

	resp, err := h.ingest.IngestFile(c.Request.Context(), tenantID, title, fileHeader.Filename, data, kbID)
	if err != nil {
		c.JSON(ragerrors.StatusCode(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func parseTenantID(raw string) (tenantID uuid.UUID, err error) {
	if raw == "" {
		return uuid.UUID{}, ragerrors.NewValidationError("tenantId", "required")
	}
	tenantID, err = uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, ragerrors.NewValidationError("tenantId", "not a valid UUID")
	}
	return tenantID, nil
}
