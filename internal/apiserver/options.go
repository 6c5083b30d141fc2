package apiserver

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/veaiops/veaiops/internal/agent"
	"github.com/veaiops/veaiops/internal/agent/llm"
	"github.com/veaiops/veaiops/internal/knowledge"
	"github.com/veaiops/veaiops/pkg/component/milvus"
	"github.com/veaiops/veaiops/pkg/component/mongodb"
	"github.com/veaiops/veaiops/pkg/component/ollama"
	"github.com/veaiops/veaiops/pkg/component/redis"
	"github.com/veaiops/veaiops/pkg/logging"
	"github.com/veaiops/veaiops/pkg/registry"
	"github.com/veaiops/veaiops/pkg/server"
)

// Options aggregates all configuration of the API server.
type Options struct {
	Log       *logging.Options   `json:"log" mapstructure:"log"`
	HTTP      *server.Options    `json:"http" mapstructure:"http"`
	MongoDB   *mongodb.Options   `json:"mongodb" mapstructure:"mongodb"`
	Redis     *redis.Options     `json:"redis" mapstructure:"redis"`
	Milvus    *milvus.Options    `json:"milvus" mapstructure:"milvus"`
	Ollama    *ollama.Options    `json:"ollama" mapstructure:"ollama"`
	LLM       *llm.Options       `json:"llm" mapstructure:"llm"`
	Knowledge *knowledge.Options `json:"knowledge" mapstructure:"knowledge"`
	Registry  *registry.Options  `json:"registry" mapstructure:"registry"`

	// RedisEnabled toggles the Redis-backed message dedup and answer cache.
	RedisEnabled bool `json:"redis-enabled" mapstructure:"redis-enabled"`

	// MilvusEnabled toggles the vector knowledge base. When false the reply
	// agent and knowledge search are disabled.
	MilvusEnabled bool `json:"milvus-enabled" mapstructure:"milvus-enabled"`

	// LLMEnabled toggles the LLM agents (interest, answer, review). When
	// false events can still be created and dispatched via the API.
	LLMEnabled bool `json:"llm-enabled" mapstructure:"llm-enabled"`

	// DispatchPoolSize is the goroutine pool size for notice fan-out.
	DispatchPoolSize int `json:"dispatch-pool-size" mapstructure:"dispatch-pool-size"`

	// SweepInterval is how often stuck threshold tasks are re-driven.
	SweepInterval time.Duration `json:"sweep-interval" mapstructure:"sweep-interval"`

	// InterestRules configures the interest agent. Rules come from the
	// config file only; there is no flag form.
	InterestRules []agent.InterestRule `json:"interest-rules" mapstructure:"interest-rules"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		Log:              logging.NewOptions(),
		HTTP:             server.NewOptions(),
		MongoDB:          mongodb.NewOptions(),
		Redis:            redis.NewOptions(),
		Milvus:           milvus.NewOptions(),
		Ollama:           ollama.NewOptions(),
		LLM:              llm.NewOptions(),
		Knowledge:        knowledge.NewOptions(),
		Registry:         registry.NewOptions(),
		RedisEnabled:     true,
		MilvusEnabled:    true,
		LLMEnabled:       true,
		DispatchPoolSize: 16,
		SweepInterval:    time.Minute,
	}
}

// AddFlags registers all flags on the flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.HTTP.AddFlags(fs)
	o.MongoDB.AddFlags(fs, "mongodb")
	o.Redis.AddFlags(fs, "redis")
	o.Milvus.AddFlags(fs, "milvus")
	o.Ollama.AddFlags(fs, "ollama")
	o.LLM.AddFlags(fs, "llm")
	o.Knowledge.AddFlags(fs, "knowledge")
	o.Registry.AddFlags(fs, "registry")

	fs.BoolVar(&o.RedisEnabled, "redis-enabled", o.RedisEnabled, "Enable the Redis message dedup and answer cache")
	fs.BoolVar(&o.MilvusEnabled, "milvus-enabled", o.MilvusEnabled, "Enable the Milvus vector knowledge base")
	fs.BoolVar(&o.LLMEnabled, "llm-enabled", o.LLMEnabled, "Enable the LLM agents")
	fs.IntVar(&o.DispatchPoolSize, "dispatch-pool-size", o.DispatchPoolSize, "Goroutine pool size for notice fan-out")
	fs.DurationVar(&o.SweepInterval, "sweep-interval", o.SweepInterval, "Interval for re-driving stuck threshold tasks")
}

// Complete fills in derived fields.
func (o *Options) Complete() error {
	for _, c := range o.completers() {
		if err := c(); err != nil {
			return err
		}
	}
	if o.DispatchPoolSize <= 0 {
		o.DispatchPoolSize = 16
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	return nil
}

func (o *Options) completers() []func() error {
	return []func() error{
		o.Log.Complete,
		o.HTTP.Complete,
		o.MongoDB.Complete,
		o.Redis.Complete,
		o.Milvus.Complete,
		o.Ollama.Complete,
		o.LLM.Complete,
		o.Knowledge.Complete,
		o.Registry.Complete,
	}
}

// Validate checks the final option values. Components that are toggled off
// skip validation so a minimal deployment only needs MongoDB.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log options: %w", err)
	}
	if err := o.HTTP.Validate(); err != nil {
		return fmt.Errorf("invalid http options: %w", err)
	}
	if err := o.MongoDB.Validate(); err != nil {
		return fmt.Errorf("invalid mongodb options: %w", err)
	}
	if o.RedisEnabled {
		if err := o.Redis.Validate(); err != nil {
			return fmt.Errorf("invalid redis options: %w", err)
		}
	}
	if o.MilvusEnabled {
		if err := o.Milvus.Validate(); err != nil {
			return fmt.Errorf("invalid milvus options: %w", err)
		}
		if err := o.Knowledge.Validate(); err != nil {
			return fmt.Errorf("invalid knowledge options: %w", err)
		}
		if o.Knowledge.EmbedderBackend == knowledge.BackendOllama {
			if err := o.Ollama.Validate(); err != nil {
				return fmt.Errorf("invalid ollama options: %w", err)
			}
		}
	}
	if o.LLMEnabled {
		if err := o.LLM.Validate(); err != nil {
			return fmt.Errorf("invalid llm options: %w", err)
		}
	}
	if err := o.Registry.Validate(); err != nil {
		return fmt.Errorf("invalid registry options: %w", err)
	}
	return nil
}
