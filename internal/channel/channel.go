// Package channel defines the messaging-platform adapter contract and the
// registry the dispatch pipeline resolves adapters from.
package channel

import (
	"context"
	"fmt"
	"sync"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
)

// Adapter sends one rendered event message to one target on a platform.
type Adapter interface {
	// Type returns the channel type the adapter serves, e.g. "lark".
	Type() string
	// SendMessage delivers the event's rendered message for this channel
	// to the target described by the notice detail, returning the
	// platform message IDs of whatever was sent.
	SendMessage(ctx context.Context, event *model.Event, detail *model.EventNoticeDetail) ([]string, error)
}

// Registry maps channel types to adapters. Registration happens once at
// wiring time; lookups are concurrent.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Registering the same channel type twice is a
// programming error and panics.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.Type()]; ok {
		panic(fmt.Sprintf("channel: adapter %q already registered", a.Type()))
	}
	r.adapters[a.Type()] = a
}

// Get resolves the adapter for a channel type.
func (r *Registry) Get(channelType string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[channelType]
	if !ok {
		return nil, errors.ErrUnknownChannel.WithMessagef("channel %q has no registered adapter", channelType)
	}
	return a, nil
}

// Types lists the registered channel types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.adapters))
	for t := range r.adapters {
		types = append(types, t)
	}
	return types
}
