package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type subscribes struct {
	coll *mongo.Collection
}

func (s *subscribes) Create(ctx context.Context, sub *model.Subscribe) error {
	if _, err := s.coll.InsertOne(ctx, sub); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *subscribes) Update(ctx context.Context, sub *model.Subscribe) error {
	return replaceByID(ctx, s.coll, sub.ID, sub)
}

func (s *subscribes) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *subscribes) Get(ctx context.Context, id string) (*model.Subscribe, error) {
	var sub model.Subscribe
	if err := getByID(ctx, s.coll, id, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *subscribes) List(ctx context.Context, opts ListOptions) (int64, []*model.Subscribe, error) {
	var list []*model.Subscribe
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}

// ListEnabledByAgentType returns the enabled subscriptions for one agent
// type. Fine-grained product/project/customer matching happens in biz.
func (s *subscribes) ListEnabledByAgentType(ctx context.Context, agentType model.AgentType) ([]*model.Subscribe, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"agent_type": agentType, "enabled": true})
	if err != nil {
		return nil, translateError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var list []*model.Subscribe
	if err := cursor.All(ctx, &list); err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

type strategies struct {
	coll *mongo.Collection
}

func (s *strategies) Create(ctx context.Context, strategy *model.InformStrategy) error {
	if _, err := s.coll.InsertOne(ctx, strategy); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *strategies) Update(ctx context.Context, strategy *model.InformStrategy) error {
	return replaceByID(ctx, s.coll, strategy.ID, strategy)
}

func (s *strategies) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *strategies) Get(ctx context.Context, id string) (*model.InformStrategy, error) {
	var strategy model.InformStrategy
	if err := getByID(ctx, s.coll, id, &strategy); err != nil {
		return nil, err
	}
	return &strategy, nil
}

func (s *strategies) List(ctx context.Context, opts ListOptions) (int64, []*model.InformStrategy, error) {
	var list []*model.InformStrategy
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
