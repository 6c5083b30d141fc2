package biz

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veaiops/veaiops/internal/channel"
	"github.com/veaiops/veaiops/internal/model"
)

// fakeAdapter records deliveries and can be told to fail.
type fakeAdapter struct {
	typ    string
	msgIDs []string
	err    error

	mu   sync.Mutex
	sent []*model.EventNoticeDetail
}

func (a *fakeAdapter) Type() string { return a.typ }

func (a *fakeAdapter) SendMessage(_ context.Context, _ *model.Event, detail *model.EventNoticeDetail) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, detail)
	if a.err != nil {
		return nil, a.err
	}
	return a.msgIDs, nil
}

func (a *fakeAdapter) sentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sent)
}

func newTestEventService(t *testing.T, factory *fakeFactory, adapters ...channel.Adapter) *EventService {
	t.Helper()
	registry := channel.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	svc, err := NewEventService(factory, registry, 4)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func interestEvent() *model.Event {
	return &model.Event{
		AgentType: model.AgentTypeInterest,
		Product:   "storage",
		RawData: toRawData(model.InterestPayload{
			RuleName: "disk-pressure",
			Message:  "disk /data is 95% full",
			Sender:   "ou_123",
			ChatID:   "oc_origin",
			Reason:   "reports a disk filling up",
		}),
	}
}

func seedSubscription(f *fakeFactory) {
	ctx := context.Background()
	_ = f.Strategies().Create(ctx, &model.InformStrategy{
		ID:      "strat-1",
		Name:    "oncall",
		Channel: model.ChannelLark,
		BotID:   "bot-1",
		ChatIDs: []string{"oc_a", "oc_b"},
	})
	_ = f.Subscribes().Create(ctx, &model.Subscribe{
		ID:          "sub-1",
		Name:        "storage alerts",
		AgentType:   model.AgentTypeInterest,
		Product:     "storage",
		StrategyIDs: []string{"strat-1"},
		WebhookURL:  "https://hooks.example.com/x",
		Enabled:     true,
	})
}

func TestEventPipelineDispatchesToMatchingSubscriptions(t *testing.T) {
	factory := newFakeFactory()
	seedSubscription(factory)
	larkAdapter := &fakeAdapter{typ: model.ChannelLark, msgIDs: []string{"om_1"}}
	webhookAdapter := &fakeAdapter{typ: model.ChannelWebhook}
	svc := newTestEventService(t, factory, larkAdapter, webhookAdapter)

	event := interestEvent()
	require.NoError(t, svc.Create(context.Background(), event))

	assert.Equal(t, model.EventStatusDispatched, event.Status)
	assert.NotEmpty(t, event.ID)
	assert.Contains(t, event.ChannelMsg, model.ChannelLark)

	details, err := svc.ListNotices(context.Background(), event.ID)
	require.NoError(t, err)
	// Two chat IDs from the strategy plus the webhook.
	require.Len(t, details, 3)
	for _, d := range details {
		assert.Equal(t, model.NoticeStatusSuccess, d.Status)
	}
	assert.Equal(t, 2, larkAdapter.sentCount())
	assert.Equal(t, 1, webhookAdapter.sentCount())

	stored, err := svc.Get(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusDispatched, stored.Status)
}

func TestEventPipelineNoneDispatchWithoutSubscribers(t *testing.T) {
	factory := newFakeFactory()
	svc := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelLark})

	event := interestEvent()
	require.NoError(t, svc.Create(context.Background(), event))

	assert.Equal(t, model.EventStatusNoneDispatch, event.Status)

	details, err := svc.ListNotices(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestEventPipelineIgnoresDisabledAndMismatchedSubscriptions(t *testing.T) {
	factory := newFakeFactory()
	ctx := context.Background()
	_ = factory.Strategies().Create(ctx, &model.InformStrategy{
		ID: "strat-1", Channel: model.ChannelLark, BotID: "bot-1", ChatIDs: []string{"oc_a"},
	})
	_ = factory.Subscribes().Create(ctx, &model.Subscribe{
		ID: "sub-disabled", AgentType: model.AgentTypeInterest,
		StrategyIDs: []string{"strat-1"}, Enabled: false,
	})
	_ = factory.Subscribes().Create(ctx, &model.Subscribe{
		ID: "sub-other-product", AgentType: model.AgentTypeInterest, Product: "network",
		StrategyIDs: []string{"strat-1"}, Enabled: true,
	})
	svc := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelLark})

	event := interestEvent()
	require.NoError(t, svc.Create(ctx, event))

	assert.Equal(t, model.EventStatusNoneDispatch, event.Status)
}

func TestEventPipelineMarksDispatchedDespiteDeliveryFailures(t *testing.T) {
	factory := newFakeFactory()
	seedSubscription(factory)
	larkAdapter := &fakeAdapter{typ: model.ChannelLark, err: assert.AnError}
	webhookAdapter := &fakeAdapter{typ: model.ChannelWebhook}
	svc := newTestEventService(t, factory, larkAdapter, webhookAdapter)

	event := interestEvent()
	require.NoError(t, svc.Create(context.Background(), event))

	assert.Equal(t, model.EventStatusDispatched, event.Status)

	details, err := svc.ListNotices(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, details, 3)

	var failed, succeeded int
	for _, d := range details {
		switch d.Status {
		case model.NoticeStatusFailed:
			failed++
			assert.NotEmpty(t, d.FailReason)
		case model.NoticeStatusSuccess:
			succeeded++
		}
	}
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, succeeded)
}

func TestEventPipelineFailsUnknownChannelDetail(t *testing.T) {
	factory := newFakeFactory()
	seedSubscription(factory)
	// Only the webhook adapter is registered; lark details must fail.
	svc := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelWebhook})

	event := interestEvent()
	require.NoError(t, svc.Create(context.Background(), event))

	assert.Equal(t, model.EventStatusDispatched, event.Status)
	details, err := svc.ListNotices(context.Background(), event.ID)
	require.NoError(t, err)
	for _, d := range details {
		if d.Channel == model.ChannelLark {
			assert.Equal(t, model.NoticeStatusFailed, d.Status)
		} else {
			assert.Equal(t, model.NoticeStatusSuccess, d.Status)
		}
	}
}

func TestEventPipelineSkipsMissingStrategies(t *testing.T) {
	factory := newFakeFactory()
	ctx := context.Background()
	_ = factory.Subscribes().Create(ctx, &model.Subscribe{
		ID: "sub-1", AgentType: model.AgentTypeInterest,
		StrategyIDs: []string{"missing"}, WebhookURL: "https://hooks.example.com/x",
		Enabled: true,
	})
	webhookAdapter := &fakeAdapter{typ: model.ChannelWebhook}
	svc := newTestEventService(t, factory, webhookAdapter)

	event := interestEvent()
	require.NoError(t, svc.Create(ctx, event))

	// The dangling strategy is skipped; the webhook still fires.
	assert.Equal(t, model.EventStatusDispatched, event.Status)
	details, err := svc.ListNotices(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, model.ChannelWebhook, details[0].Channel)
}

func TestReplyEventTargetsOriginatingChat(t *testing.T) {
	factory := newFakeFactory()
	larkAdapter := &fakeAdapter{typ: model.ChannelLark, msgIDs: []string{"om_reply"}}
	svc := newTestEventService(t, factory, larkAdapter)

	event := &model.Event{
		AgentType: model.AgentTypeReply,
		RawData: toRawData(model.ReplyPayload{
			BotID:           "bot-1",
			ChatID:          "oc_origin",
			ParentMessageID: "om_question",
			Question:        "how do I rotate the key?",
			Answer:          "Use the rotate endpoint.",
		}),
	}
	require.NoError(t, svc.Create(context.Background(), event))

	assert.Equal(t, model.EventStatusDispatched, event.Status)
	details, err := svc.ListNotices(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, model.ChannelLark, details[0].Channel)
	assert.Equal(t, "oc_origin", details[0].ChatID)
	assert.Equal(t, "om_question", details[0].ParentMessageID)
	assert.Equal(t, []string{"om_reply"}, details[0].OutMessageIDs)
	assert.Equal(t, "Use the rotate endpoint.", event.ChannelMsg[model.ChannelLark].Text)
}

func TestReplyEventWithoutChatTerminatesNoneDispatch(t *testing.T) {
	factory := newFakeFactory()
	svc := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelLark})

	event := &model.Event{
		AgentType: model.AgentTypeReply,
		RawData:   toRawData(model.ReplyPayload{Answer: "orphan answer"}),
	}
	require.NoError(t, svc.Create(context.Background(), event))

	assert.Equal(t, model.EventStatusNoneDispatch, event.Status)
}

func TestEventPipelineRejectsUnknownAgentType(t *testing.T) {
	factory := newFakeFactory()
	svc := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelLark})

	event := &model.Event{AgentType: "bogus", RawData: map[string]interface{}{}}
	err := svc.Create(context.Background(), event)
	require.Error(t, err)

	// The event stays INITIAL and can be inspected.
	stored, getErr := svc.Get(context.Background(), event.ID)
	require.NoError(t, getErr)
	assert.Equal(t, model.EventStatusInitial, stored.Status)
}

func TestDispatchLeavesTerminalEventsAlone(t *testing.T) {
	factory := newFakeFactory()
	seedSubscription(factory)
	larkAdapter := &fakeAdapter{typ: model.ChannelLark}
	webhookAdapter := &fakeAdapter{typ: model.ChannelWebhook}
	svc := newTestEventService(t, factory, larkAdapter, webhookAdapter)

	event := interestEvent()
	require.NoError(t, svc.Create(context.Background(), event))
	require.Equal(t, model.EventStatusDispatched, event.Status)
	delivered := larkAdapter.sentCount()

	redriven, err := svc.Dispatch(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusDispatched, redriven.Status)
	assert.Equal(t, delivered, larkAdapter.sentCount())
}

func TestDispatchRedrivesPendingDetailsOnly(t *testing.T) {
	factory := newFakeFactory()
	seedSubscription(factory)
	larkAdapter := &fakeAdapter{typ: model.ChannelLark}
	webhookAdapter := &fakeAdapter{typ: model.ChannelWebhook}
	svc := newTestEventService(t, factory, larkAdapter, webhookAdapter)

	ctx := context.Background()
	event := interestEvent()
	require.NoError(t, svc.Create(ctx, event))

	// Flip one detail back to pending to simulate a crash mid-dispatch.
	details, err := factory.Notices().ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	details[0].Status = model.NoticeStatusPending
	require.NoError(t, factory.Notices().Update(ctx, details[0]))
	stored, err := factory.Events().Get(ctx, event.ID)
	require.NoError(t, err)
	stored.Status = model.EventStatusSubscribed
	require.NoError(t, factory.Events().Update(ctx, stored))

	redriven, err := svc.Dispatch(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusDispatched, redriven.Status)

	details, err = factory.Notices().ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	for _, d := range details {
		assert.NotEqual(t, model.NoticeStatusPending, d.Status)
	}
}

func TestBuildCardUsesConfiguredTemplate(t *testing.T) {
	factory := newFakeFactory()
	seedSubscription(factory)
	ctx := context.Background()
	_ = factory.Bots().Create(ctx, &model.Bot{
		ID:      "bot-1",
		Channel: model.ChannelLark,
		AppID:   "cli_x",
		CardTemplateIDs: map[string]string{
			string(model.AgentTypeInterest): "AAq0000000001",
		},
	})
	svc := newTestEventService(t, factory, &fakeAdapter{typ: model.ChannelLark}, &fakeAdapter{typ: model.ChannelWebhook})

	event := interestEvent()
	require.NoError(t, svc.Create(ctx, event))

	msg := event.ChannelMsg[model.ChannelLark]
	assert.Equal(t, "AAq0000000001", msg.TemplateID)
	assert.Equal(t, "disk-pressure", msg.TemplateVariable["rule_name"])
	assert.Empty(t, msg.Text)
}
