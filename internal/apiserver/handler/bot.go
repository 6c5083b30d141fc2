package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
)

// BotHandler handles bot HTTP requests.
type BotHandler struct {
	svc *biz.BotService
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(svc *biz.BotService) *BotHandler {
	return &BotHandler{svc: svc}
}

// BotRequest is the request body for creating or updating a bot. Secrets
// are accepted here but never echoed back.
type BotRequest struct {
	Name              string            `json:"name" binding:"required"`
	Channel           string            `json:"channel" binding:"required"`
	AppID             string            `json:"app_id" binding:"required"`
	AppSecret         string            `json:"app_secret"`
	VerificationToken string            `json:"verification_token"`
	CardTemplateIDs   map[string]string `json:"card_template_ids"`
}

func (r *BotRequest) toModel() *model.Bot {
	return &model.Bot{
		Name:              r.Name,
		Channel:           r.Channel,
		AppID:             r.AppID,
		AppSecret:         r.AppSecret,
		VerificationToken: r.VerificationToken,
		CardTemplateIDs:   r.CardTemplateIDs,
	}
}

// Create creates a bot.
func (h *BotHandler) Create(c *gin.Context) {
	var req BotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	if req.AppSecret == "" {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("app_secret is required"), nil)
		return
	}
	bot := req.toModel()
	if err := h.svc.Create(c.Request.Context(), bot); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, bot)
}

// Update replaces a bot.
func (h *BotHandler) Update(c *gin.Context) {
	var req BotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	bot := req.toModel()
	bot.ID = c.Param("id")
	if err := h.svc.Update(c.Request.Context(), bot); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, bot)
}

// Delete removes a bot.
func (h *BotHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Get returns one bot.
func (h *BotHandler) Get(c *gin.Context) {
	bot, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, bot)
}

// List returns a page of bots.
func (h *BotHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}
