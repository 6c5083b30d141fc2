package biz

import (
	"context"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/channel"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/id"
)

// EventService drives events through the dispatch pipeline:
// INITIAL → CARD_BUILT → SUBSCRIBED|NONE_DISPATCH → DISPATCHED.
// The steps run strictly in order and never branch back; per-delivery
// failures are recorded on the notice detail and swallowed.
type EventService struct {
	store    store.Factory
	registry *channel.Registry
	pool     *ants.Pool
}

// NewEventService creates an EventService with a fan-out pool of the
// given size.
func NewEventService(factory store.Factory, registry *channel.Registry, poolSize int) (*EventService, error) {
	if poolSize <= 0 {
		poolSize = 16
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &EventService{store: factory, registry: registry, pool: pool}, nil
}

// Close releases the fan-out pool.
func (s *EventService) Close() {
	s.pool.Release()
}

// Create persists a new INITIAL event and runs the pipeline on it.
func (s *EventService) Create(ctx context.Context, event *model.Event) error {
	now := time.Now().UTC()
	if event.ID == "" {
		event.ID = id.NewULID()
	}
	event.Status = model.EventStatusInitial
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.store.Events().Create(ctx, event); err != nil {
		return err
	}
	return s.Run(ctx, event)
}

// Get retrieves an event.
func (s *EventService) Get(ctx context.Context, eventID string) (*model.Event, error) {
	return s.store.Events().Get(ctx, eventID)
}

// List lists events.
func (s *EventService) List(ctx context.Context, offset, limit int64) (int64, []*model.Event, error) {
	return s.store.Events().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

// ListNotices lists an event's fan-out details.
func (s *EventService) ListNotices(ctx context.Context, eventID string) ([]*model.EventNoticeDetail, error) {
	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.Notices().ListByEvent(ctx, eventID)
}

// Dispatch re-drives an event from its current status. Terminal events
// are left alone.
func (s *EventService) Dispatch(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.store.Events().Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.Run(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Run advances the event until it reaches a terminal status. A failure
// in card building or subscription matching stops the pipeline with the
// event left at its current status.
func (s *EventService) Run(ctx context.Context, event *model.Event) error {
	for {
		switch event.Status {
		case model.EventStatusInitial:
			if err := s.buildCard(ctx, event); err != nil {
				return err
			}
		case model.EventStatusCardBuilt:
			if err := s.subscribe(ctx, event); err != nil {
				return err
			}
		case model.EventStatusSubscribed:
			return s.dispatch(ctx, event)
		case model.EventStatusDispatched, model.EventStatusNoneDispatch:
			return nil
		default:
			return errors.ErrInvalidEventStatus.WithMessagef("event %s has status %q", event.ID, event.Status)
		}
	}
}

// transition persists a status change.
func (s *EventService) transition(ctx context.Context, event *model.Event, status model.EventStatus) error {
	event.Status = status
	event.UpdatedAt = time.Now().UTC()
	if err := s.store.Events().Update(ctx, event); err != nil {
		return err
	}
	logger.Infow("Event status changed", "event_id", event.ID, "status", status)
	return nil
}

// buildCard renders the per-channel messages for the event and moves it
// to CARD_BUILT. An unknown agent type aborts the pipeline.
func (s *EventService) buildCard(ctx context.Context, event *model.Event) error {
	channelMsg, err := s.renderChannelMessages(ctx, event)
	if err != nil {
		return err
	}
	event.ChannelMsg = channelMsg
	return s.transition(ctx, event, model.EventStatusCardBuilt)
}

// subscribe fans the event out into notice details. Zero details means
// nobody listens: the event terminates as NONE_DISPATCH.
func (s *EventService) subscribe(ctx context.Context, event *model.Event) error {
	var details []*model.EventNoticeDetail
	var err error

	if event.AgentType == model.AgentTypeReply {
		details, err = s.replyDetail(event)
	} else {
		details, err = s.matchSubscriptions(ctx, event)
	}
	if err != nil {
		return err
	}

	if len(details) == 0 {
		return s.transition(ctx, event, model.EventStatusNoneDispatch)
	}
	if err := s.store.Notices().CreateMany(ctx, details); err != nil {
		return err
	}
	return s.transition(ctx, event, model.EventStatusSubscribed)
}

// replyDetail synthesizes the single notice a direct-reply event needs,
// straight from its raw data.
func (s *EventService) replyDetail(event *model.Event) ([]*model.EventNoticeDetail, error) {
	var payload model.ReplyPayload
	if err := decodePayload(event.RawData, &payload); err != nil {
		return nil, err
	}
	if payload.ChatID == "" {
		return nil, nil
	}

	chnl := payload.Channel
	if chnl == "" {
		chnl = model.ChannelLark
	}
	return []*model.EventNoticeDetail{newDetail(event.ID, chnl, payload.BotID, payload.ChatID, "", payload.ParentMessageID)}, nil
}

// matchSubscriptions expands matching subscriptions into one detail per
// (strategy × chat) plus an optional webhook detail per subscription.
func (s *EventService) matchSubscriptions(ctx context.Context, event *model.Event) ([]*model.EventNoticeDetail, error) {
	subs, err := s.store.Subscribes().ListEnabledByAgentType(ctx, event.AgentType)
	if err != nil {
		return nil, err
	}

	var details []*model.EventNoticeDetail
	for _, sub := range subs {
		if !sub.Matches(event) {
			continue
		}
		for _, strategyID := range sub.StrategyIDs {
			strategy, err := s.store.Strategies().Get(ctx, strategyID)
			if err != nil {
				logger.Errorw("Failed to load inform strategy",
					"subscribe_id", sub.ID, "strategy_id", strategyID, "error", err)
				continue
			}
			for _, chatID := range strategy.ChatIDs {
				details = append(details, newDetail(event.ID, strategy.Channel, strategy.BotID, chatID, "", ""))
			}
		}
		if sub.WebhookURL != "" {
			details = append(details, newDetail(event.ID, model.ChannelWebhook, "", "", sub.WebhookURL, ""))
		}
	}
	return details, nil
}

// dispatch delivers every pending detail concurrently, records outcomes
// best-effort and marks the event DISPATCHED regardless of individual
// failures.
func (s *EventService) dispatch(ctx context.Context, event *model.Event) error {
	details, err := s.store.Notices().ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, detail := range details {
		if detail.Status != model.NoticeStatusPending {
			continue
		}
		detail := detail
		wg.Add(1)
		task := func() {
			defer wg.Done()
			s.deliver(ctx, event, detail)
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool saturated or closed; deliver inline rather than drop.
			task()
		}
	}
	wg.Wait()

	return s.transition(ctx, event, model.EventStatusDispatched)
}

// deliver sends one notice detail. Errors are logged and swallowed; the
// detail records them, the event does not.
func (s *EventService) deliver(ctx context.Context, event *model.Event, detail *model.EventNoticeDetail) {
	adapter, err := s.registry.Get(detail.Channel)
	if err != nil {
		s.finishDetail(ctx, detail, nil, err)
		return
	}
	msgIDs, err := adapter.SendMessage(ctx, event, detail)
	s.finishDetail(ctx, detail, msgIDs, err)
}

func (s *EventService) finishDetail(ctx context.Context, detail *model.EventNoticeDetail, msgIDs []string, sendErr error) {
	if sendErr != nil {
		detail.Status = model.NoticeStatusFailed
		detail.FailReason = sendErr.Error()
		logger.Errorw("Notice delivery failed",
			"notice_id", detail.ID, "event_id", detail.EventID,
			"channel", detail.Channel, "error", sendErr)
	} else {
		detail.Status = model.NoticeStatusSuccess
		detail.OutMessageIDs = msgIDs
	}
	detail.UpdatedAt = time.Now().UTC()

	if err := s.store.Notices().Update(ctx, detail); err != nil {
		logger.Errorw("Failed to record notice outcome",
			"notice_id", detail.ID, "event_id", detail.EventID, "error", err)
	}
}

func newDetail(eventID, chnl, botID, chatID, webhookURL, parentID string) *model.EventNoticeDetail {
	now := time.Now().UTC()
	return &model.EventNoticeDetail{
		ID:              id.NewULID(),
		EventID:         eventID,
		Channel:         chnl,
		BotID:           botID,
		ChatID:          chatID,
		WebhookURL:      webhookURL,
		ParentMessageID: parentID,
		Status:          model.NoticeStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
