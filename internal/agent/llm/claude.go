package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/veaiops/veaiops/pkg/errors"
)

// Claude is the Anthropic Claude model client.
type Claude struct {
	client anthropic.Client
	opts   *Options
}

// NewClaude creates a Claude model client.
func NewClaude(opts *Options) *Claude {
	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(opts.APIKey)),
		opts:   opts,
	}
}

// Provider implements ModelClient.
func (c *Claude) Provider() string {
	return ProviderClaude
}

// Complete implements ModelClient.
func (c *Claude) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: c.opts.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", errors.ErrModelCall.WithCause(err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.ErrModelOutput.WithMessage("claude returned an empty completion")
	}
	return text, nil
}
