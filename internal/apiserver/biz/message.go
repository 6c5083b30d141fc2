package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/component/redis"
	"github.com/veaiops/veaiops/pkg/id"
)

// InterestEvaluator is the interest agent surface message ingest needs.
type InterestEvaluator interface {
	Evaluate(ctx context.Context, msg *model.ChatMessage) (*model.Event, error)
}

// Answerer is the answer agent surface message ingest needs.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
	ReplyEvent(msg *model.ChatMessage, question, answer string) *model.Event
}

const (
	dedupKeyPrefix  = "veaiops:msg:"
	answerKeyPrefix = "veaiops:answer:"
	dedupTTL        = 24 * time.Hour
	answerTTL       = time.Hour
)

// MessageService ingests inbound chat messages: dedup, persist, run the
// agents, and feed resulting events into the dispatch pipeline inline.
type MessageService struct {
	store    store.Factory
	events   *EventService
	interest InterestEvaluator
	answerer Answerer
	cache    *redis.Client
}

// NewMessageService creates a new MessageService. The agents and cache
// may be nil; each disables its part of the flow.
func NewMessageService(factory store.Factory, events *EventService, interest InterestEvaluator, answerer Answerer, cache *redis.Client) *MessageService {
	return &MessageService{
		store:    factory,
		events:   events,
		interest: interest,
		answerer: answerer,
		cache:    cache,
	}
}

// List lists persisted messages.
func (s *MessageService) List(ctx context.Context, offset, limit int64) (int64, []*model.ChatMessage, error) {
	return s.store.Messages().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

// Ingest processes one inbound message. Channel callbacks are retried by
// the platform, so agent failures are logged and swallowed: the ingest
// succeeds once the message is stored.
func (s *MessageService) Ingest(ctx context.Context, msg *model.ChatMessage) error {
	if s.isDuplicate(ctx, msg.MessageID) {
		logger.Debugw("Duplicate message skipped", "message_id", msg.MessageID)
		return nil
	}

	msg.ID = id.NewULID()
	msg.CreatedAt = time.Now().UTC()
	if err := s.store.Messages().Create(ctx, msg); err != nil {
		return err
	}

	s.runInterest(ctx, msg)
	s.runAnswer(ctx, msg)
	return nil
}

func (s *MessageService) runInterest(ctx context.Context, msg *model.ChatMessage) {
	if s.interest == nil {
		return
	}
	event, err := s.interest.Evaluate(ctx, msg)
	if err != nil {
		logger.Errorw("Interest agent failed", "message_id", msg.MessageID, "error", err)
		return
	}
	if event == nil {
		return
	}
	if err := s.events.Create(ctx, event); err != nil {
		logger.Errorw("Failed to run interest event pipeline", "message_id", msg.MessageID, "error", err)
	}
}

func (s *MessageService) runAnswer(ctx context.Context, msg *model.ChatMessage) {
	if s.answerer == nil || !looksLikeQuestion(msg.Content) {
		return
	}

	question := strings.TrimSpace(msg.Content)
	answer := s.cachedAnswer(ctx, question)
	if answer == "" {
		var err error
		answer, err = s.answerer.Answer(ctx, question)
		if err != nil {
			logger.Errorw("Answer agent failed", "message_id", msg.MessageID, "error", err)
			return
		}
		if answer == "" {
			return
		}
		s.cacheAnswer(ctx, question, answer)
	}

	event := s.answerer.ReplyEvent(msg, question, answer)
	if err := s.events.Create(ctx, event); err != nil {
		logger.Errorw("Failed to run reply event pipeline", "message_id", msg.MessageID, "error", err)
	}
}

// isDuplicate claims the message ID in the dedup window. Without a cache
// every message is treated as fresh.
func (s *MessageService) isDuplicate(ctx context.Context, messageID string) bool {
	if s.cache == nil || messageID == "" {
		return false
	}
	ok, err := s.cache.Raw().SetNX(ctx, dedupKeyPrefix+messageID, 1, dedupTTL).Result()
	if err != nil {
		logger.Warnw("Message dedup check failed", "message_id", messageID, "error", err)
		return false
	}
	return !ok
}

func (s *MessageService) cachedAnswer(ctx context.Context, question string) string {
	if s.cache == nil {
		return ""
	}
	answer, err := s.cache.Raw().Get(ctx, answerKeyPrefix+hashQuestion(question)).Result()
	if err != nil {
		return ""
	}
	return answer
}

func (s *MessageService) cacheAnswer(ctx context.Context, question, answer string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Raw().Set(ctx, answerKeyPrefix+hashQuestion(question), answer, answerTTL).Err(); err != nil {
		logger.Warnw("Failed to cache answer", "error", err)
	}
}

func hashQuestion(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return hex.EncodeToString(sum[:16])
}

// looksLikeQuestion is a cheap gate so the answer agent isn't prompted
// for every chat line.
func looksLikeQuestion(content string) bool {
	c := strings.TrimSpace(content)
	if c == "" {
		return false
	}
	return strings.HasSuffix(c, "?") || strings.HasSuffix(c, "？") ||
		strings.Contains(c, "how ") || strings.Contains(c, "How ") ||
		strings.Contains(c, "what ") || strings.Contains(c, "What ") ||
		strings.Contains(c, "why ") || strings.Contains(c, "Why ") ||
		strings.Contains(c, "怎么") || strings.Contains(c, "如何") || strings.Contains(c, "为什么")
}
