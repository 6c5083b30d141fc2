package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/knowledge"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
)

// KnowledgeHandler exposes semantic search over the knowledge base.
type KnowledgeHandler struct {
	svc *knowledge.Service
}

// NewKnowledgeHandler creates a new KnowledgeHandler. svc may be nil when
// the vector store is not configured; requests then fail with a clear error.
func NewKnowledgeHandler(svc *knowledge.Service) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

// SearchRequest is the request body for knowledge search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k" binding:"omitempty,min=1,max=50"`
}

// Search returns the QA pairs semantically closest to the query.
func (h *KnowledgeHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	if h.svc == nil {
		httputils.WriteResponse(c, errors.ErrVectorStore.WithMessage("knowledge base is not configured"), nil)
		return
	}
	hits, err := h.svc.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"hits": hits, "total": len(hits)})
}
