package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type bots struct {
	coll *mongo.Collection
}

func (s *bots) Create(ctx context.Context, bot *model.Bot) error {
	if _, err := s.coll.InsertOne(ctx, bot); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *bots) Update(ctx context.Context, bot *model.Bot) error {
	return replaceByID(ctx, s.coll, bot.ID, bot)
}

func (s *bots) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *bots) Get(ctx context.Context, id string) (*model.Bot, error) {
	var bot model.Bot
	if err := getByID(ctx, s.coll, id, &bot); err != nil {
		return nil, err
	}
	return &bot, nil
}

func (s *bots) List(ctx context.Context, opts ListOptions) (int64, []*model.Bot, error) {
	var list []*model.Bot
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
