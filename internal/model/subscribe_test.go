package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeMatches(t *testing.T) {
	event := &Event{
		AgentType: AgentTypeInterest,
		Product:   "storage",
		Project:   "vortex",
		Customer:  "acme",
	}

	tests := []struct {
		name string
		sub  Subscribe
		want bool
	}{
		{
			name: "agent type only",
			sub:  Subscribe{AgentType: AgentTypeInterest, Enabled: true},
			want: true,
		},
		{
			name: "all filters match",
			sub: Subscribe{
				AgentType: AgentTypeInterest, Product: "storage",
				Project: "vortex", Customer: "acme", Enabled: true,
			},
			want: true,
		},
		{
			name: "disabled",
			sub:  Subscribe{AgentType: AgentTypeInterest, Enabled: false},
			want: false,
		},
		{
			name: "wrong agent type",
			sub:  Subscribe{AgentType: AgentTypeThreshold, Enabled: true},
			want: false,
		},
		{
			name: "product mismatch",
			sub:  Subscribe{AgentType: AgentTypeInterest, Product: "network", Enabled: true},
			want: false,
		},
		{
			name: "project mismatch",
			sub:  Subscribe{AgentType: AgentTypeInterest, Project: "other", Enabled: true},
			want: false,
		},
		{
			name: "customer mismatch",
			sub:  Subscribe{AgentType: AgentTypeInterest, Customer: "globex", Enabled: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Matches(event))
		})
	}
}
