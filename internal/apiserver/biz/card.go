package biz

import (
	"context"
	"fmt"
	"strconv"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

// toRawData converts a typed payload into the generic raw-data map
// events carry.
func toRawData(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]interface{}{}
	}
	return raw
}

// decodePayload converts an event's raw data map into its typed payload.
func decodePayload(raw map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return errors.ErrInvalidPayload.WithCause(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.ErrInvalidPayload.WithCause(err)
	}
	return nil
}

// renderChannelMessages builds the per-channel message map for an event.
// Card-capable channels get a template reference with variables; reply
// events carry plain text aimed at the originating chat.
func (s *EventService) renderChannelMessages(ctx context.Context, event *model.Event) (map[string]model.ChannelMessage, error) {
	switch event.AgentType {
	case model.AgentTypeInterest:
		var payload model.InterestPayload
		if err := decodePayload(event.RawData, &payload); err != nil {
			return nil, err
		}
		vars := map[string]string{
			"rule_name": payload.RuleName,
			"message":   payload.Message,
			"sender":    payload.Sender,
			"reason":    payload.Reason,
			"chat_id":   payload.ChatID,
		}
		text := fmt.Sprintf("[Interest] rule %s matched a message from %s: %s",
			payload.RuleName, payload.Sender, payload.Message)
		return s.cardMessages(ctx, event.AgentType, vars, text)

	case model.AgentTypeThreshold:
		var payload model.ThresholdPayload
		if err := decodePayload(event.RawData, &payload); err != nil {
			return nil, err
		}
		vars := map[string]string{
			"task_id":    payload.TaskID,
			"datasource": payload.Datasource,
			"metric":     payload.Metric,
			"upper":      strconv.FormatFloat(payload.Upper, 'f', 4, 64),
			"lower":      strconv.FormatFloat(payload.Lower, 'f', 4, 64),
		}
		text := fmt.Sprintf("[Threshold] %s on %s: recommended band [%s, %s]",
			payload.Metric, payload.Datasource, vars["lower"], vars["upper"])
		return s.cardMessages(ctx, event.AgentType, vars, text)

	case model.AgentTypeReply:
		var payload model.ReplyPayload
		if err := decodePayload(event.RawData, &payload); err != nil {
			return nil, err
		}
		return map[string]model.ChannelMessage{
			model.ChannelLark: {Text: payload.Answer},
		}, nil

	default:
		return nil, errors.ErrUnknownAgentType.WithMessagef("agent type %q", event.AgentType)
	}
}

// cardMessages resolves the Lark card template for the agent type and
// assembles the channel message map. Without a configured template the
// Lark message degrades to plain text.
func (s *EventService) cardMessages(ctx context.Context, agentType model.AgentType, vars map[string]string, text string) (map[string]model.ChannelMessage, error) {
	templateID := s.lookupCardTemplate(ctx, agentType)

	larkMsg := model.ChannelMessage{Text: text}
	if templateID != "" {
		larkMsg = model.ChannelMessage{TemplateID: templateID, TemplateVariable: vars}
	}
	return map[string]model.ChannelMessage{
		model.ChannelLark: larkMsg,
	}, nil
}

// lookupCardTemplate returns the first card template any Lark bot
// configures for the agent type, or "" when none is configured.
func (s *EventService) lookupCardTemplate(ctx context.Context, agentType model.AgentType) string {
	_, bots, err := s.store.Bots().List(ctx, store.ListOptions{})
	if err != nil {
		return ""
	}
	for _, bot := range bots {
		if bot.Channel != model.ChannelLark {
			continue
		}
		if tid, ok := bot.CardTemplateIDs[string(agentType)]; ok && tid != "" {
			return tid
		}
	}
	return ""
}
