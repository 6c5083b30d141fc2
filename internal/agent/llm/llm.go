// Package llm abstracts the chat model providers the agents prompt.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/veaiops/veaiops/pkg/errors"
)

// ModelClient generates one completion for a prompt. Implementations
// carry their own credentials and model selection.
type ModelClient interface {
	// Complete returns the model's text reply for the prompt.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Provider returns the provider name, e.g. "gemini".
	Provider() string
}

// Provider names accepted by Options.Provider.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// Options selects and configures the model provider.
type Options struct {
	Provider  string `json:"provider" mapstructure:"provider"`
	Model     string `json:"model" mapstructure:"model"`
	APIKey    string `json:"-" mapstructure:"api-key"`
	MaxTokens int64  `json:"max-tokens" mapstructure:"max-tokens"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Provider:  ProviderGemini,
		Model:     "gemini-2.0-flash",
		MaxTokens: 4096,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.APIKey == "" {
		o.APIKey = os.Getenv("LLM_API_KEY")
	}
	switch o.Provider {
	case ProviderGemini, ProviderClaude:
	default:
		return fmt.Errorf("llm provider must be one of gemini, claude, got %q", o.Provider)
	}
	if o.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if o.MaxTokens <= 0 {
		return fmt.Errorf("llm max-tokens must be positive")
	}
	return nil
}

// AddFlags adds flags for LLM options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Provider, namePrefix+"provider", o.Provider, "Model provider (gemini or claude)")
	fs.StringVar(&o.Model, namePrefix+"model", o.Model, "Model name")
	fs.StringVar(&o.APIKey, namePrefix+"api-key", o.APIKey, "Model provider API key (prefer LLM_API_KEY env var)")
	fs.Int64Var(&o.MaxTokens, namePrefix+"max-tokens", o.MaxTokens, "Max output tokens per completion")
}

// NewClient constructs the ModelClient selected by the options.
func NewClient(ctx context.Context, opts *Options) (ModelClient, error) {
	switch opts.Provider {
	case ProviderGemini:
		return NewGemini(ctx, opts)
	case ProviderClaude:
		return NewClaude(opts), nil
	default:
		return nil, errors.ErrModelCall.WithMessagef("unknown llm provider %q", opts.Provider)
	}
}
