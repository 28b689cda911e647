// Package handlers implements C11's HTTP adapter: the query endpoint, the
// two ingest endpoints, and the admin knowledge-base routes. Grounded on
// the teacher's handlers/agent_handlers.go gin idiom (bind, validate,
// delegate to a service, translate the error into a status code).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/orchestrator"
	"github.com/ragcore/ragcore/ragerrors"
)

type QueryHandlers struct {
	orchestrator *orchestrator.Orchestrator
}

func NewQueryHandlers(o *orchestrator.Orchestrator) *QueryHandlers {
	return &QueryHandlers{orchestrator: o}
}

// Query handles POST /api/v1/query, the sole external entry point for C11.
func (h *QueryHandlers) Query(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.orchestrator.Handle(c.Request.Context(), req)
	if err != nil {
		c.JSON(ragerrors.StatusCode(err), gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
