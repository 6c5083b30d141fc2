// Package webhook implements the generic webhook channel adapter: events
// are POSTed as JSON to the subscription's webhook URL.
package webhook

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/utils/httpclient"
	"github.com/veaiops/veaiops/pkg/utils/json"
)

const defaultTimeout = 10 * time.Second

// payload is the JSON document delivered to webhook endpoints.
type payload struct {
	EventID   string                 `json:"event_id"`
	AgentType model.AgentType        `json:"agent_type"`
	Product   string                 `json:"product,omitempty"`
	Project   string                 `json:"project,omitempty"`
	Customer  string                 `json:"customer,omitempty"`
	RawData   map[string]interface{} `json:"raw_data"`
	Timestamp string                 `json:"timestamp"`
}

// Adapter delivers events to arbitrary HTTP endpoints.
type Adapter struct {
	http *httpclient.Client
}

// New creates a webhook adapter.
func New() *Adapter {
	return &Adapter{
		http: httpclient.New(defaultTimeout, httpclient.DefaultMaxAttempts),
	}
}

// Type implements channel.Adapter.
func (a *Adapter) Type() string {
	return model.ChannelWebhook
}

// SendMessage POSTs the event to the detail's webhook URL. Webhook
// deliveries have no platform message ID, so the returned slice is nil.
func (a *Adapter) SendMessage(ctx context.Context, event *model.Event, detail *model.EventNoticeDetail) ([]string, error) {
	if detail.WebhookURL == "" {
		return nil, errors.ErrSendMessage.WithMessagef("notice %s has no webhook url", detail.ID)
	}

	body, err := json.Marshal(payload{
		EventID:   event.ID,
		AgentType: event.AgentType,
		Product:   event.Product,
		Project:   event.Project,
		Customer:  event.Customer,
		RawData:   event.RawData,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, detail.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := a.http.DoJSON(req, nil); err != nil {
		return nil, errors.ErrSendMessage.WithCause(err)
	}

	logger.Debugw("Webhook delivered", "event_id", event.ID, "url", detail.WebhookURL)
	return nil, nil
}
