package model

import "time"

// EventStatus tracks an event's progress through the dispatch pipeline.
// Transitions are strictly sequential and never branch back.
type EventStatus string

const (
	EventStatusInitial      EventStatus = "INITIAL"
	EventStatusCardBuilt    EventStatus = "CARD_BUILT"
	EventStatusSubscribed   EventStatus = "SUBSCRIBED"
	EventStatusDispatched   EventStatus = "DISPATCHED"
	EventStatusNoneDispatch EventStatus = "NONE_DISPATCH"
)

// AgentType identifies which agent produced an event and therefore the
// shape of its raw data.
type AgentType string

const (
	// AgentTypeInterest events come from interest-rule matches on inbound
	// chat messages and fan out via subscriptions.
	AgentTypeInterest AgentType = "interest"
	// AgentTypeReply events answer a question directly back to the
	// originating chat; they bypass subscription matching.
	AgentTypeReply AgentType = "reply"
	// AgentTypeThreshold events announce threshold recommendation results.
	AgentTypeThreshold AgentType = "threshold"
)

// Event is a notification-worthy occurrence produced by an agent.
type Event struct {
	ID        string      `bson:"_id" json:"id"`
	AgentType AgentType   `bson:"agent_type" json:"agent_type"`
	Status    EventStatus `bson:"status" json:"status"`

	// Product/Project/Customer scope the event for subscription matching.
	Product  string `bson:"product" json:"product"`
	Project  string `bson:"project" json:"project"`
	Customer string `bson:"customer" json:"customer"`

	// RawData is the agent-type-specific payload.
	RawData map[string]interface{} `bson:"raw_data" json:"raw_data"`

	// ChannelMsg maps channel type to the rendered message for that
	// channel. Populated by the card-build step.
	ChannelMsg map[string]ChannelMessage `bson:"channel_msg,omitempty" json:"channel_msg,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ChannelMessage is the rendered per-channel message: a card template
// reference with variables for card-capable channels, or a plain text
// body for channels without cards.
type ChannelMessage struct {
	TemplateID       string            `bson:"template_id,omitempty" json:"template_id,omitempty"`
	TemplateVariable map[string]string `bson:"template_variable,omitempty" json:"template_variable,omitempty"`
	Text             string            `bson:"text,omitempty" json:"text,omitempty"`
}

// InterestPayload is the raw data shape for interest events.
type InterestPayload struct {
	RuleName string `json:"rule_name" mapstructure:"rule_name"`
	Message  string `json:"message" mapstructure:"message"`
	Sender   string `json:"sender" mapstructure:"sender"`
	ChatID   string `json:"chat_id" mapstructure:"chat_id"`
	Reason   string `json:"reason" mapstructure:"reason"`
}

// ReplyPayload is the raw data shape for direct-reply events. It names
// the originating chat the answer goes back to.
type ReplyPayload struct {
	Channel         string `json:"channel" mapstructure:"channel"`
	BotID           string `json:"bot_id" mapstructure:"bot_id"`
	ChatID          string `json:"chat_id" mapstructure:"chat_id"`
	ParentMessageID string `json:"parent_message_id,omitempty" mapstructure:"parent_message_id"`
	Question        string `json:"question" mapstructure:"question"`
	Answer          string `json:"answer" mapstructure:"answer"`
}

// ThresholdPayload is the raw data shape for threshold events.
type ThresholdPayload struct {
	TaskID     string  `json:"task_id" mapstructure:"task_id"`
	Datasource string  `json:"datasource" mapstructure:"datasource"`
	Metric     string  `json:"metric" mapstructure:"metric"`
	Upper      float64 `json:"upper" mapstructure:"upper"`
	Lower      float64 `json:"lower" mapstructure:"lower"`
}
