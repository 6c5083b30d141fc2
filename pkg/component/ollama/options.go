package ollama

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration options for the Ollama embedding backend.
type Options struct {
	BaseURL    string        `json:"base-url" mapstructure:"base-url"`
	EmbedModel string        `json:"embed-model" mapstructure:"embed-model"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		BaseURL:    "http://127.0.0.1:11434",
		EmbedModel: "nomic-embed-text",
		Timeout:    60 * time.Second,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return fmt.Errorf("ollama base-url is required")
	}
	if !strings.HasPrefix(o.BaseURL, "http://") && !strings.HasPrefix(o.BaseURL, "https://") {
		return fmt.Errorf("ollama base-url must start with http:// or https://")
	}
	if o.EmbedModel == "" {
		return fmt.Errorf("ollama embed-model is required")
	}
	return nil
}

// AddFlags adds flags for Ollama options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.BaseURL, namePrefix+"base-url", o.BaseURL, "Ollama server base URL")
	fs.StringVar(&o.EmbedModel, namePrefix+"embed-model", o.EmbedModel, "Ollama embedding model name")
	fs.DurationVar(&o.Timeout, namePrefix+"timeout", o.Timeout, "Ollama request timeout")
}
