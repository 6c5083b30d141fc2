package milvus

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Options defines configuration options for Milvus.
type Options struct {
	Address  string        `json:"address" mapstructure:"address"`
	Username string        `json:"username" mapstructure:"username"`
	Password string        `json:"-" mapstructure:"password"`
	Database string        `json:"database" mapstructure:"database"`
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Address:  "127.0.0.1:19530",
		Database: "default",
		Timeout:  10 * time.Second,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Password == "" {
		o.Password = os.Getenv("MILVUS_PASSWORD")
	}
	if o.Address == "" {
		return fmt.Errorf("milvus address is required")
	}
	return nil
}

// AddFlags adds flags for Milvus options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Address, namePrefix+"address", o.Address, "Milvus address (host:port)")
	fs.StringVar(&o.Username, namePrefix+"username", o.Username, "Milvus username")
	fs.StringVar(&o.Password, namePrefix+"password", o.Password, "Milvus password (prefer MILVUS_PASSWORD env var)")
	fs.StringVar(&o.Database, namePrefix+"database", o.Database, "Milvus database name")
	fs.DurationVar(&o.Timeout, namePrefix+"timeout", o.Timeout, "Milvus connect timeout")
}
