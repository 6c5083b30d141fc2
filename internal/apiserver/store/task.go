package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veaiops/veaiops/internal/model"
)

type tasks struct {
	coll *mongo.Collection
}

func (s *tasks) Create(ctx context.Context, task *model.ThresholdTask) error {
	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *tasks) Update(ctx context.Context, task *model.ThresholdTask) error {
	return replaceByID(ctx, s.coll, task.ID, task)
}

func (s *tasks) Get(ctx context.Context, id string) (*model.ThresholdTask, error) {
	var task model.ThresholdTask
	if err := getByID(ctx, s.coll, id, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *tasks) List(ctx context.Context, opts ListOptions) (int64, []*model.ThresholdTask, error) {
	var list []*model.ThresholdTask
	total, err := findPage(ctx, s.coll, bson.M{}, opts, &list)
	if err != nil {
		return 0, nil, err
	}
	return total, list, nil
}

// Claim atomically moves a PENDING task to RUNNING. The status filter
// makes concurrent claims race safely: exactly one update matches.
func (s *tasks) Claim(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.TaskStatusPending},
		bson.M{"$set": bson.M{
			"status":     model.TaskStatusRunning,
			"started_at": now,
			"updated_at": now,
		}})
	if err != nil {
		return false, translateError(err)
	}
	return result.MatchedCount == 1, nil
}

// ListNonTerminal returns PENDING and RUNNING tasks for the refresher.
func (s *tasks) ListNonTerminal(ctx context.Context) ([]*model.ThresholdTask, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"status": bson.M{
		"$in": []model.TaskStatus{model.TaskStatusPending, model.TaskStatusRunning},
	}})
	if err != nil {
		return nil, translateError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var list []*model.ThresholdTask
	if err := cursor.All(ctx, &list); err != nil {
		return nil, translateError(err)
	}
	return list, nil
}
