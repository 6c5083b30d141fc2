package model

import "time"

// Bot holds per-channel bot credentials. Secrets never serialize to JSON.
type Bot struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	Channel string `bson:"channel" json:"channel"`

	AppID     string `bson:"app_id" json:"app_id"`
	AppSecret string `bson:"app_secret" json:"-"`

	// VerificationToken validates inbound Lark event callbacks.
	VerificationToken string `bson:"verification_token,omitempty" json:"-"`

	// CardTemplateIDs maps agent type to the card template this bot uses
	// for that event kind.
	CardTemplateIDs map[string]string `bson:"card_template_ids,omitempty" json:"card_template_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
