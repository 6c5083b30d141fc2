package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type events struct {
	coll *mongo.Collection
}

// Create inserts a new event.
func (s *events) Create(ctx context.Context, event *model.Event) error {
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		return translateError(err)
	}
	return nil
}

// Update overwrites the event document.
func (s *events) Update(ctx context.Context, event *model.Event) error {
	return replaceByID(ctx, s.coll, event.ID, event)
}

// Get retrieves an event by ID.
func (s *events) Get(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := getByID(ctx, s.coll, id, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// List lists events with pagination, newest first.
func (s *events) List(ctx context.Context, opts ListOptions) (int64, []*model.Event, error) {
	var list []*model.Event
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}
