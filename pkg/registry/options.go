package registry

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration options for etcd service registration.
type Options struct {
	Enabled     bool          `json:"enabled" mapstructure:"enabled"`
	Endpoints   []string      `json:"endpoints" mapstructure:"endpoints"`
	DialTimeout time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	LeaseTTL    int64         `json:"lease-ttl" mapstructure:"lease-ttl"`
	Prefix      string        `json:"prefix" mapstructure:"prefix"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:     false,
		Endpoints:   []string{"127.0.0.1:2379"},
		DialTimeout: 5 * time.Second,
		LeaseTTL:    10,
		Prefix:      "/veaiops/services",
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if !o.Enabled {
		return nil
	}
	if len(o.Endpoints) == 0 {
		return fmt.Errorf("registry endpoints are required when registry is enabled")
	}
	if o.LeaseTTL < 2 {
		return fmt.Errorf("registry lease-ttl must be at least 2 seconds")
	}
	return nil
}

// AddFlags adds flags for registry options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.BoolVar(&o.Enabled, namePrefix+"enabled", o.Enabled, "Enable etcd service registration")
	fs.StringSliceVar(&o.Endpoints, namePrefix+"endpoints", o.Endpoints, "Etcd endpoints")
	fs.DurationVar(&o.DialTimeout, namePrefix+"dial-timeout", o.DialTimeout, "Etcd dial timeout")
	fs.Int64Var(&o.LeaseTTL, namePrefix+"lease-ttl", o.LeaseTTL, "Registration lease TTL in seconds")
	fs.StringVar(&o.Prefix, namePrefix+"prefix", o.Prefix, "Key prefix for registered instances")
}
