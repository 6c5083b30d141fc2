package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
)

// SubscribeHandler handles subscription HTTP requests.
type SubscribeHandler struct {
	svc *biz.SubscribeService
}

// NewSubscribeHandler creates a new SubscribeHandler.
func NewSubscribeHandler(svc *biz.SubscribeService) *SubscribeHandler {
	return &SubscribeHandler{svc: svc}
}

// SubscribeRequest is the request body for creating or updating a
// subscription.
type SubscribeRequest struct {
	Name        string          `json:"name" binding:"required"`
	AgentType   model.AgentType `json:"agent_type" binding:"required,agenttype"`
	Product     string          `json:"product"`
	Project     string          `json:"project"`
	Customer    string          `json:"customer"`
	StrategyIDs []string        `json:"strategy_ids"`
	WebhookURL  string          `json:"webhook_url" binding:"omitempty,url"`
	Enabled     *bool           `json:"enabled"`
}

func (r *SubscribeRequest) toModel() *model.Subscribe {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &model.Subscribe{
		Name:        r.Name,
		AgentType:   r.AgentType,
		Product:     r.Product,
		Project:     r.Project,
		Customer:    r.Customer,
		StrategyIDs: r.StrategyIDs,
		WebhookURL:  r.WebhookURL,
		Enabled:     enabled,
	}
}

// Create creates a subscription.
func (h *SubscribeHandler) Create(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	sub := req.toModel()
	if err := h.svc.Create(c.Request.Context(), sub); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, sub)
}

// Update replaces a subscription.
func (h *SubscribeHandler) Update(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	sub := req.toModel()
	sub.ID = c.Param("id")
	if err := h.svc.Update(c.Request.Context(), sub); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, sub)
}

// Delete removes a subscription.
func (h *SubscribeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Get returns one subscription.
func (h *SubscribeHandler) Get(c *gin.Context) {
	sub, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, sub)
}

// List returns a page of subscriptions.
func (h *SubscribeHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}

// StrategyHandler handles inform strategy HTTP requests.
type StrategyHandler struct {
	svc *biz.StrategyService
}

// NewStrategyHandler creates a new StrategyHandler.
func NewStrategyHandler(svc *biz.StrategyService) *StrategyHandler {
	return &StrategyHandler{svc: svc}
}

// StrategyRequest is the request body for creating or updating an inform
// strategy.
type StrategyRequest struct {
	Name    string   `json:"name" binding:"required"`
	Channel string   `json:"channel" binding:"required"`
	BotID   string   `json:"bot_id" binding:"required"`
	ChatIDs []string `json:"chat_ids" binding:"required,min=1"`
}

// Create creates a strategy.
func (h *StrategyHandler) Create(c *gin.Context) {
	var req StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	strategy := &model.InformStrategy{
		Name:    req.Name,
		Channel: req.Channel,
		BotID:   req.BotID,
		ChatIDs: req.ChatIDs,
	}
	if err := h.svc.Create(c.Request.Context(), strategy); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, strategy)
}

// Update replaces a strategy.
func (h *StrategyHandler) Update(c *gin.Context) {
	var req StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	strategy := &model.InformStrategy{
		ID:      c.Param("id"),
		Name:    req.Name,
		Channel: req.Channel,
		BotID:   req.BotID,
		ChatIDs: req.ChatIDs,
	}
	if err := h.svc.Update(c.Request.Context(), strategy); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, strategy)
}

// Delete removes a strategy.
func (h *StrategyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Get returns one strategy.
func (h *StrategyHandler) Get(c *gin.Context) {
	strategy, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, strategy)
}

// List returns a page of strategies.
func (h *StrategyHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}
