package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
)

// EventHandler handles event HTTP requests.
type EventHandler struct {
	svc *biz.EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc *biz.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEventRequest is the request body for creating an event.
type CreateEventRequest struct {
	AgentType model.AgentType        `json:"agent_type" binding:"required,agenttype"`
	Product   string                 `json:"product"`
	Project   string                 `json:"project"`
	Customer  string                 `json:"customer"`
	RawData   map[string]interface{} `json:"raw_data" binding:"required"`
}

// Create creates an event and runs the dispatch pipeline on it.
func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	event := &model.Event{
		AgentType: req.AgentType,
		Product:   req.Product,
		Project:   req.Project,
		Customer:  req.Customer,
		RawData:   req.RawData,
	}
	if err := h.svc.Create(c.Request.Context(), event); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, event)
}

// Get returns one event.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, event)
}

// List returns a page of events.
func (h *EventHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}

// Dispatch re-drives an event from its current status.
func (h *EventHandler) Dispatch(c *gin.Context) {
	event, err := h.svc.Dispatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, event)
}

// ListNotices returns an event's fan-out details.
func (h *EventHandler) ListNotices(c *gin.Context) {
	details, err := h.svc.ListNotices(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, details)
}
