// Package lark implements the Lark (Feishu) channel adapter on top of the
// official oapi SDK. Messages are sent as interactive card templates when
// the event carries one, falling back to plain text.
package lark

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"golang.org/x/time/rate"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// BotProvider resolves bot credentials by ID.
type BotProvider interface {
	GetBot(ctx context.Context, id string) (*model.Bot, error)
}

// sendRate protects per-bot message quotas. Lark caps bot sends around
// 5 QPS per app.
const (
	sendRate  = 5
	sendBurst = 10
)

type botClient struct {
	client  *lark.Client
	limiter *rate.Limiter
}

// Adapter sends event messages through Lark bots. Clients and rate
// limiters are cached per bot app.
type Adapter struct {
	bots BotProvider

	mu      sync.Mutex
	clients map[string]*botClient
}

// New creates a Lark adapter backed by the given bot credential source.
func New(bots BotProvider) *Adapter {
	return &Adapter{
		bots:    bots,
		clients: make(map[string]*botClient),
	}
}

// Type implements channel.Adapter.
func (a *Adapter) Type() string {
	return model.ChannelLark
}

// SendMessage sends the event's Lark message to the detail's chat. When
// the detail names a parent message, the send becomes a threaded reply.
func (a *Adapter) SendMessage(ctx context.Context, event *model.Event, detail *model.EventNoticeDetail) ([]string, error) {
	msg, ok := event.ChannelMsg[model.ChannelLark]
	if !ok {
		return nil, errors.ErrSendMessage.WithMessagef("event %s has no rendered lark message", event.ID)
	}

	bot, err := a.bots.GetBot(ctx, detail.BotID)
	if err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}

	bc, err := a.clientFor(bot)
	if err != nil {
		return nil, err
	}
	if err := bc.limiter.Wait(ctx); err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}

	content, msgType, err := renderContent(&msg)
	if err != nil {
		return nil, err
	}

	if detail.ParentMessageID != "" {
		return a.reply(ctx, bc.client, detail.ParentMessageID, msgType, content)
	}
	return a.create(ctx, bc.client, detail.ChatID, msgType, content)
}

func (a *Adapter) create(ctx context.Context, client *lark.Client, chatID, msgType, content string) ([]string, error) {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := client.Im.Message.Create(ctx, req)
	if err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}
	if !resp.Success() {
		return nil, errors.ErrSendMessage.WithMessagef("lark create message failed: code=%d msg=%s", resp.Code, resp.Msg)
	}

	logger.Debugw("Lark message sent", "chat_id", chatID, "msg_type", msgType)
	if resp.Data != nil && resp.Data.MessageId != nil {
		return []string{*resp.Data.MessageId}, nil
	}
	return nil, nil
}

func (a *Adapter) reply(ctx context.Context, client *lark.Client, parentID, msgType, content string) ([]string, error) {
	req := larkim.NewReplyMessageReqBuilder().
		MessageId(parentID).
		Body(larkim.NewReplyMessageReqBodyBuilder().
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := client.Im.Message.Reply(ctx, req)
	if err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}
	if !resp.Success() {
		return nil, errors.ErrSendMessage.WithMessagef("lark reply message failed: code=%d msg=%s", resp.Code, resp.Msg)
	}

	if resp.Data != nil && resp.Data.MessageId != nil {
		return []string{*resp.Data.MessageId}, nil
	}
	return nil, nil
}

// clientFor returns the cached SDK client for the bot, creating it on
// first use.
func (a *Adapter) clientFor(bot *model.Bot) (*botClient, error) {
	if bot.AppID == "" || bot.AppSecret == "" {
		return nil, errors.ErrSendMessage.WithMessagef("bot %s missing lark credentials", bot.ID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if bc, ok := a.clients[bot.AppID]; ok {
		return bc, nil
	}
	bc := &botClient{
		client:  lark.NewClient(bot.AppID, bot.AppSecret),
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
	}
	a.clients[bot.AppID] = bc
	return bc, nil
}

// cardContent is the interactive message body referencing a card
// template by ID.
type cardContent struct {
	Type string   `json:"type"`
	Data cardData `json:"data"`
}

type cardData struct {
	TemplateID       string            `json:"template_id"`
	TemplateVariable map[string]string `json:"template_variable,omitempty"`
}

// renderContent serializes the channel message into the Lark content
// field and picks the matching message type.
func renderContent(msg *model.ChannelMessage) (string, string, error) {
	if msg.TemplateID != "" {
		content, err := json.Marshal(cardContent{
			Type: "template",
			Data: cardData{
				TemplateID:       msg.TemplateID,
				TemplateVariable: msg.TemplateVariable,
			},
		})
		if err != nil {
			return "", "", fmt.Errorf("failed to marshal card content: %w", err)
		}
		return string(content), larkim.MsgTypeInteractive, nil
	}

	content, err := json.Marshal(map[string]string{"text": msg.Text})
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal text content: %w", err)
	}
	return string(content), larkim.MsgTypeText, nil
}
