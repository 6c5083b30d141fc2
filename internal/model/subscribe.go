package model

import "time"

// InformStrategy is a named (channel, bot, chat list) notification target.
type InformStrategy struct {
	ID      string   `bson:"_id" json:"id"`
	Name    string   `bson:"name" json:"name"`
	Channel string   `bson:"channel" json:"channel"`
	BotID   string   `bson:"bot_id" json:"bot_id"`
	ChatIDs []string `bson:"chat_ids" json:"chat_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Subscribe binds event attributes to one or more InformStrategy targets.
// Empty filter fields match any value.
type Subscribe struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	AgentType AgentType `bson:"agent_type" json:"agent_type"`
	Product   string    `bson:"product,omitempty" json:"product,omitempty"`
	Project   string    `bson:"project,omitempty" json:"project,omitempty"`
	Customer  string    `bson:"customer,omitempty" json:"customer,omitempty"`

	StrategyIDs []string `bson:"strategy_ids" json:"strategy_ids"`
	WebhookURL  string   `bson:"webhook_url,omitempty" json:"webhook_url,omitempty"`
	Enabled     bool     `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Matches reports whether the subscription applies to the event. The
// agent type must match exactly; product, project and customer match
// when the filter field is empty or equal.
func (s *Subscribe) Matches(e *Event) bool {
	if !s.Enabled || s.AgentType != e.AgentType {
		return false
	}
	if s.Product != "" && s.Product != e.Product {
		return false
	}
	if s.Project != "" && s.Project != e.Project {
		return false
	}
	if s.Customer != "" && s.Customer != e.Customer {
		return false
	}
	return true
}
