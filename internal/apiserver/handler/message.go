package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/apiserver/biz"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/internal/pkg/httputils"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/response"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// MessageHandler handles inbound chat messages. Its LarkCallback endpoint
// implements the Lark event subscription protocol (schema 2.0): it echoes
// url_verification challenges and ingests im.message.receive_v1 events.
type MessageHandler struct {
	svc *biz.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *biz.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// larkCallback is the envelope of a Lark event subscription push.
type larkCallback struct {
	// url_verification fields.
	Type      string `json:"type"`
	Challenge string `json:"challenge"`

	// schema 2.0 event fields.
	Schema string `json:"schema"`
	Header struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		AppID     string `json:"app_id"`
	} `json:"header"`
	Event struct {
		Sender struct {
			SenderID struct {
				OpenID string `json:"open_id"`
			} `json:"sender_id"`
		} `json:"sender"`
		Message struct {
			MessageID   string `json:"message_id"`
			ChatID      string `json:"chat_id"`
			MessageType string `json:"message_type"`
			Content     string `json:"content"`
		} `json:"message"`
	} `json:"event"`
}

const larkMessageReceiveEvent = "im.message.receive_v1"

// LarkCallback receives Lark event subscription pushes.
func (h *MessageHandler) LarkCallback(c *gin.Context) {
	var cb larkCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	// Endpoint registration handshake.
	if cb.Type == "url_verification" {
		c.JSON(200, gin.H{"challenge": cb.Challenge})
		return
	}

	if cb.Header.EventType != larkMessageReceiveEvent {
		logger.Debugw("Ignoring lark event", "event_type", cb.Header.EventType)
		httputils.WriteResponse(c, nil, nil)
		return
	}

	msg := &model.ChatMessage{
		Channel:   model.ChannelLark,
		BotID:     cb.Header.AppID,
		MessageID: cb.Event.Message.MessageID,
		ChatID:    cb.Event.Message.ChatID,
		Sender:    cb.Event.Sender.SenderID.OpenID,
		Content:   extractLarkText(cb.Event.Message.MessageType, cb.Event.Message.Content),
	}
	if msg.Content == "" {
		logger.Debugw("Ignoring lark message without text",
			"message_id", msg.MessageID, "message_type", cb.Event.Message.MessageType)
		httputils.WriteResponse(c, nil, nil)
		return
	}

	if err := h.svc.Ingest(c.Request.Context(), msg); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// extractLarkText pulls plain text out of a Lark message content payload.
// Text messages carry {"text": "..."}; other types are skipped.
func extractLarkText(messageType, content string) string {
	if messageType != "text" {
		return ""
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return ""
	}
	return body.Text
}

// List returns a page of ingested chat messages.
func (h *MessageHandler) List(c *gin.Context) {
	page, pageSize, offset, limit := pagination(c)
	total, list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}
