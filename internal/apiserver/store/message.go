package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type messages struct {
	coll *mongo.Collection
}

func (s *messages) Create(ctx context.Context, msg *model.ChatMessage) error {
	if _, err := s.coll.InsertOne(ctx, msg); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *messages) List(ctx context.Context, opts ListOptions) (int64, []*model.ChatMessage, error) {
	var list []*model.ChatMessage
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
