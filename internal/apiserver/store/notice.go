package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veaiops/veaiops/internal/model"
)

type notices struct {
	coll *mongo.Collection
}

// CreateMany inserts the fan-out details for one event in a single call.
func (s *notices) CreateMany(ctx context.Context, details []*model.EventNoticeDetail) error {
	if len(details) == 0 {
		return nil
	}
	docs := make([]interface{}, len(details))
	for i, d := range details {
		docs[i] = d
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return translateError(err)
	}
	return nil
}

// Update overwrites the notice detail document.
func (s *notices) Update(ctx context.Context, detail *model.EventNoticeDetail) error {
	return replaceByID(ctx, s.coll, detail.ID, detail)
}

// ListByEvent returns all fan-out details of an event in creation order.
func (s *notices) ListByEvent(ctx context.Context, eventID string) ([]*model.EventNoticeDetail, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"event_id": eventID},
		mongooptions.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, translateError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var list []*model.EventNoticeDetail
	if err := cursor.All(ctx, &list); err != nil {
		return nil, translateError(err)
	}
	return list, nil
}
