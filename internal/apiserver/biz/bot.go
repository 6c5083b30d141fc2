package biz

import (
	"context"
	"time"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/id"
)

// BotService handles bot credential business logic. It also serves as
// the credential source for the Lark channel adapter.
type BotService struct {
	store store.Factory
}

// NewBotService creates a new BotService.
func NewBotService(factory store.Factory) *BotService {
	return &BotService{store: factory}
}

// Create persists a new bot.
func (s *BotService) Create(ctx context.Context, bot *model.Bot) error {
	now := time.Now().UTC()
	bot.ID = id.NewULID()
	bot.CreatedAt = now
	bot.UpdatedAt = now
	return s.store.Bots().Create(ctx, bot)
}

// Update replaces a bot. An empty incoming secret keeps the stored one
// so updates don't have to re-send credentials.
func (s *BotService) Update(ctx context.Context, bot *model.Bot) error {
	existing, err := s.store.Bots().Get(ctx, bot.ID)
	if err != nil {
		return err
	}
	if bot.AppSecret == "" {
		bot.AppSecret = existing.AppSecret
	}
	if bot.VerificationToken == "" {
		bot.VerificationToken = existing.VerificationToken
	}
	bot.CreatedAt = existing.CreatedAt
	bot.UpdatedAt = time.Now().UTC()
	return s.store.Bots().Update(ctx, bot)
}

// Delete removes a bot.
func (s *BotService) Delete(ctx context.Context, botID string) error {
	return s.store.Bots().Delete(ctx, botID)
}

// Get retrieves a bot.
func (s *BotService) Get(ctx context.Context, botID string) (*model.Bot, error) {
	return s.store.Bots().Get(ctx, botID)
}

// List lists bots.
func (s *BotService) List(ctx context.Context, offset, limit int64) (int64, []*model.Bot, error) {
	return s.store.Bots().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

// GetBot implements the Lark adapter's BotProvider.
func (s *BotService) GetBot(ctx context.Context, botID string) (*model.Bot, error) {
	return s.store.Bots().Get(ctx, botID)
}
