package model

import "time"

// NoticeStatus is the delivery status of a single fan-out attempt.
type NoticeStatus string

const (
	NoticeStatusPending NoticeStatus = "PENDING"
	NoticeStatusSuccess NoticeStatus = "SUCCESS"
	NoticeStatusFailed  NoticeStatus = "FAILED"
)

// Channel type constants for notice details and adapters.
const (
	ChannelLark    = "lark"
	ChannelWebhook = "webhook"
)

// EventNoticeDetail is one delivery attempt of an event to a specific
// channel target. Delivery failures are recorded here best-effort and do
// not influence the owning event's status.
type EventNoticeDetail struct {
	ID      string `bson:"_id" json:"id"`
	EventID string `bson:"event_id" json:"event_id"`

	Channel string `bson:"channel" json:"channel"`
	BotID   string `bson:"bot_id,omitempty" json:"bot_id,omitempty"`
	ChatID  string `bson:"chat_id,omitempty" json:"chat_id,omitempty"`

	// WebhookURL is set instead of BotID/ChatID for webhook details.
	WebhookURL string `bson:"webhook_url,omitempty" json:"webhook_url,omitempty"`

	// ParentMessageID makes the delivery a threaded reply when set.
	ParentMessageID string `bson:"parent_message_id,omitempty" json:"parent_message_id,omitempty"`

	Status        NoticeStatus `bson:"status" json:"status"`
	OutMessageIDs []string     `bson:"out_message_ids,omitempty" json:"out_message_ids,omitempty"`
	FailReason    string       `bson:"fail_reason,omitempty" json:"fail_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
