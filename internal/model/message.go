package model

import "time"

// ChatMessage is an inbound chat message received from a channel
// callback, persisted before the agents see it.
type ChatMessage struct {
	ID      string `bson:"_id" json:"id"`
	Channel string `bson:"channel" json:"channel"`
	BotID   string `bson:"bot_id,omitempty" json:"bot_id,omitempty"`

	// MessageID is the channel-native message identifier, used for
	// dedup and threaded replies.
	MessageID string `bson:"message_id" json:"message_id"`
	ChatID    string `bson:"chat_id" json:"chat_id"`
	Sender    string `bson:"sender" json:"sender"`
	Content   string `bson:"content" json:"content"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
