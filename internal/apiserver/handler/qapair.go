package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
)

// QAPairHandler handles knowledge QA pair HTTP requests.
type QAPairHandler struct {
	svc *biz.QAPairService
}

// NewQAPairHandler creates a new QAPairHandler.
func NewQAPairHandler(svc *biz.QAPairService) *QAPairHandler {
	return &QAPairHandler{svc: svc}
}

// QAPairRequest is the request body for creating or updating a QA pair.
type QAPairRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Source   string `json:"source"`
}

// Create creates a QA pair in draft status.
func (h *QAPairHandler) Create(c *gin.Context) {
	var req QAPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	pair := &model.QAPair{
		Question: req.Question,
		Answer:   req.Answer,
		Source:   req.Source,
	}
	if err := h.svc.Create(c.Request.Context(), pair); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, pair)
}

// Update replaces a QA pair and resets it to draft.
func (h *QAPairHandler) Update(c *gin.Context) {
	var req QAPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	pair := &model.QAPair{
		ID:       c.Param("id"),
		Question: req.Question,
		Answer:   req.Answer,
		Source:   req.Source,
	}
	if err := h.svc.Update(c.Request.Context(), pair); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, pair)
}

// Delete removes a QA pair and its knowledge vector.
func (h *QAPairHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Get returns one QA pair.
func (h *QAPairHandler) Get(c *gin.Context) {
	pair, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, pair)
}

// List returns a page of QA pairs.
func (h *QAPairHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}

// Review runs the review agent over a draft QA pair and, when approved,
// publishes it to the knowledge base.
func (h *QAPairHandler) Review(c *gin.Context) {
	pair, err := h.svc.Review(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, pair)
}
