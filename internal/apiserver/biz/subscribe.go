package biz

import (
	"context"
	"time"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/errors"
	"github.com/veaiops/veaiops/pkg/id"
)

// SubscribeService handles subscription business logic.
type SubscribeService struct {
	store store.Factory
}

// NewSubscribeService creates a new SubscribeService.
func NewSubscribeService(factory store.Factory) *SubscribeService {
	return &SubscribeService{store: factory}
}

// Create validates the strategy references and persists the subscription.
func (s *SubscribeService) Create(ctx context.Context, sub *model.Subscribe) error {
	if err := s.checkStrategies(ctx, sub.StrategyIDs); err != nil {
		return err
	}
	now := time.Now().UTC()
	sub.ID = id.NewULID()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	return s.store.Subscribes().Create(ctx, sub)
}

// Update replaces a subscription.
func (s *SubscribeService) Update(ctx context.Context, sub *model.Subscribe) error {
	existing, err := s.store.Subscribes().Get(ctx, sub.ID)
	if err != nil {
		return err
	}
	if err := s.checkStrategies(ctx, sub.StrategyIDs); err != nil {
		return err
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = time.Now().UTC()
	return s.store.Subscribes().Update(ctx, sub)
}

// Delete removes a subscription.
func (s *SubscribeService) Delete(ctx context.Context, subID string) error {
	return s.store.Subscribes().Delete(ctx, subID)
}

// Get retrieves a subscription.
func (s *SubscribeService) Get(ctx context.Context, subID string) (*model.Subscribe, error) {
	return s.store.Subscribes().Get(ctx, subID)
}

// List lists subscriptions.
func (s *SubscribeService) List(ctx context.Context, offset, limit int64) (int64, []*model.Subscribe, error) {
	return s.store.Subscribes().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

func (s *SubscribeService) checkStrategies(ctx context.Context, ids []string) error {
	for _, strategyID := range ids {
		if _, err := s.store.Strategies().Get(ctx, strategyID); err != nil {
			return errors.ErrInvalidParam.WithMessagef("inform strategy %s does not exist", strategyID)
		}
	}
	return nil
}

// StrategyService handles inform strategy business logic.
type StrategyService struct {
	store store.Factory
}

// NewStrategyService creates a new StrategyService.
func NewStrategyService(factory store.Factory) *StrategyService {
	return &StrategyService{store: factory}
}

// Create validates the bot reference and persists the strategy.
func (s *StrategyService) Create(ctx context.Context, strategy *model.InformStrategy) error {
	if _, err := s.store.Bots().Get(ctx, strategy.BotID); err != nil {
		return errors.ErrInvalidParam.WithMessagef("bot %s does not exist", strategy.BotID)
	}
	now := time.Now().UTC()
	strategy.ID = id.NewULID()
	strategy.CreatedAt = now
	strategy.UpdatedAt = now
	return s.store.Strategies().Create(ctx, strategy)
}

// Update replaces a strategy.
func (s *StrategyService) Update(ctx context.Context, strategy *model.InformStrategy) error {
	existing, err := s.store.Strategies().Get(ctx, strategy.ID)
	if err != nil {
		return err
	}
	if _, err := s.store.Bots().Get(ctx, strategy.BotID); err != nil {
		return errors.ErrInvalidParam.WithMessagef("bot %s does not exist", strategy.BotID)
	}
	strategy.CreatedAt = existing.CreatedAt
	strategy.UpdatedAt = time.Now().UTC()
	return s.store.Strategies().Update(ctx, strategy)
}

// Delete removes a strategy.
func (s *StrategyService) Delete(ctx context.Context, strategyID string) error {
	return s.store.Strategies().Delete(ctx, strategyID)
}

// Get retrieves a strategy.
func (s *StrategyService) Get(ctx context.Context, strategyID string) (*model.InformStrategy, error) {
	return s.store.Strategies().Get(ctx, strategyID)
}

// List lists strategies.
func (s *StrategyService) List(ctx context.Context, offset, limit int64) (int64, []*model.InformStrategy, error) {
	return s.store.Strategies().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}
