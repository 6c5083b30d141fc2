package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/agent/llm"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/id"
)

// InterestRule describes one thing operators want to be told about when
// it shows up in chat, e.g. "customer reports data loss".
type InterestRule struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	// Product/Project/Customer scope events produced by this rule so
	// subscriptions can match them.
	Product  string `json:"product,omitempty" mapstructure:"product"`
	Project  string `json:"project,omitempty" mapstructure:"project"`
	Customer string `json:"customer,omitempty" mapstructure:"customer"`
}

const interestSystemPrompt = `You are a chat-monitoring assistant for an operations team.
You are given a list of interest rules and one chat message.
Decide whether the message matches any rule.
Reply with JSON only, no prose: {"matched": bool, "rule_name": string, "reason": string}.
"rule_name" must be one of the provided rule names, or "" when matched is false.`

type interestVerdict struct {
	Matched  bool   `json:"matched"`
	RuleName string `json:"rule_name"`
	Reason   string `json:"reason"`
}

// InterestAgent classifies inbound chat messages against interest rules
// and emits an interest event for each match.
type InterestAgent struct {
	model llm.ModelClient
	rules []InterestRule
}

// NewInterestAgent creates an InterestAgent over the given rules.
func NewInterestAgent(model llm.ModelClient, rules []InterestRule) *InterestAgent {
	return &InterestAgent{model: model, rules: rules}
}

// Evaluate runs the message through the model. It returns a new INITIAL
// event when a rule matched, or nil when nothing matched.
func (a *InterestAgent) Evaluate(ctx context.Context, msg *model.ChatMessage) (*model.Event, error) {
	if len(a.rules) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("Interest rules:\n")
	for _, r := range a.rules {
		fmt.Fprintf(&sb, "- %s: %s\n", r.Name, r.Description)
	}
	fmt.Fprintf(&sb, "\nChat message from %s:\n%s\n", msg.Sender, msg.Content)

	reply, err := a.model.Complete(ctx, interestSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	verdict, err := llm.Parse[interestVerdict](reply)
	if err != nil {
		return nil, err
	}
	if !verdict.Matched {
		return nil, nil
	}

	rule, ok := a.ruleByName(verdict.RuleName)
	if !ok {
		logger.Warnw("Interest verdict names unknown rule",
			"rule_name", verdict.RuleName, "message_id", msg.MessageID)
		return nil, nil
	}

	logger.Infow("Interest rule matched",
		"rule", rule.Name, "chat_id", msg.ChatID, "message_id", msg.MessageID)

	now := time.Now().UTC()
	return &model.Event{
		ID:        id.NewULID(),
		AgentType: model.AgentTypeInterest,
		Status:    model.EventStatusInitial,
		Product:   rule.Product,
		Project:   rule.Project,
		Customer:  rule.Customer,
		RawData: toRawData(model.InterestPayload{
			RuleName: rule.Name,
			Message:  msg.Content,
			Sender:   msg.Sender,
			ChatID:   msg.ChatID,
			Reason:   verdict.Reason,
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *InterestAgent) ruleByName(name string) (InterestRule, bool) {
	for _, r := range a.rules {
		if r.Name == name {
			return r, true
		}
	}
	return InterestRule{}, false
}
