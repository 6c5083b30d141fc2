package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veaiops/veaiops/internal/model"
)

func testEvent() *model.Event {
	return &model.Event{
		ID:        "evt-1",
		AgentType: model.AgentTypeInterest,
		Product:   "storage",
		RawData:   map[string]interface{}{"rule_name": "disk-pressure"},
	}
}

func TestSendMessagePostsEventPayload(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := New()
	msgIDs, err := adapter.SendMessage(context.Background(), testEvent(), &model.EventNoticeDetail{
		ID: "ntc-1", EventID: "evt-1", Channel: model.ChannelWebhook, WebhookURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Nil(t, msgIDs)

	assert.Equal(t, "evt-1", got["event_id"])
	assert.Equal(t, "interest", got["agent_type"])
	assert.Equal(t, "storage", got["product"])
	raw, ok := got["raw_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "disk-pressure", raw["rule_name"])
	assert.NotEmpty(t, got["timestamp"])
}

func TestSendMessageRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	adapter := New()
	_, err := adapter.SendMessage(context.Background(), testEvent(), &model.EventNoticeDetail{
		ID: "ntc-1", WebhookURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendMessageFailsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	adapter := New()
	_, err := adapter.SendMessage(context.Background(), testEvent(), &model.EventNoticeDetail{
		ID: "ntc-1", WebhookURL: srv.URL,
	})
	require.Error(t, err)
	// 4xx is not transient; no retry.
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendMessageRequiresURL(t *testing.T) {
	adapter := New()
	_, err := adapter.SendMessage(context.Background(), testEvent(), &model.EventNoticeDetail{ID: "ntc-1"})
	require.Error(t, err)
}
