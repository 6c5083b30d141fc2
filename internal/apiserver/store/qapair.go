package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type qapairs struct {
	coll *mongo.Collection
}

func (s *qapairs) Create(ctx context.Context, pair *model.QAPair) error {
	if _, err := s.coll.InsertOne(ctx, pair); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *qapairs) Update(ctx context.Context, pair *model.QAPair) error {
	return replaceByID(ctx, s.coll, pair.ID, pair)
}

func (s *qapairs) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *qapairs) Get(ctx context.Context, id string) (*model.QAPair, error) {
	var pair model.QAPair
	if err := getByID(ctx, s.coll, id, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (s *qapairs) List(ctx context.Context, opts ListOptions) (int64, []*model.QAPair, error) {
	var list []*model.QAPair
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
