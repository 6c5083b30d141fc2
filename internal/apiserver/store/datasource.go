package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type datasources struct {
	coll *mongo.Collection
}

func (s *datasources) Create(ctx context.Context, ds *model.Datasource) error {
	if _, err := s.coll.InsertOne(ctx, ds); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *datasources) Update(ctx context.Context, ds *model.Datasource) error {
	return replaceByID(ctx, s.coll, ds.ID, ds)
}

func (s *datasources) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *datasources) Get(ctx context.Context, id string) (*model.Datasource, error) {
	var ds model.Datasource
	if err := getByID(ctx, s.coll, id, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (s *datasources) List(ctx context.Context, opts ListOptions) (int64, []*model.Datasource, error) {
	var list []*model.Datasource
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
