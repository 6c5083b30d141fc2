package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veaiops/veaiops/pkg/component/mongodb"
	"github.com/veaiops/veaiops/pkg/errors"
)

// Collection names.
const (
	collEvents      = "events"
	collNotices     = "event_notice_details"
	collSubscribes  = "subscribes"
	collStrategies  = "inform_strategies"
	collBots        = "bots"
	collDatasources = "datasources"
	collTasks       = "threshold_tasks"
	collQAPairs     = "qa_pairs"
	collMessages    = "chat_messages"
)

// datastore is the MongoDB-backed Factory.
type datastore struct {
	client *mongodb.Client
}

// NewMongoFactory creates a Factory over the MongoDB client.
func NewMongoFactory(client *mongodb.Client) Factory {
	return &datastore{client: client}
}

func (ds *datastore) Events() EventStore           { return &events{ds.client.Collection(collEvents)} }
func (ds *datastore) Notices() NoticeStore         { return &notices{ds.client.Collection(collNotices)} }
func (ds *datastore) Subscribes() SubscribeStore   { return &subscribes{ds.client.Collection(collSubscribes)} }
func (ds *datastore) Strategies() StrategyStore    { return &strategies{ds.client.Collection(collStrategies)} }
func (ds *datastore) Bots() BotStore               { return &bots{ds.client.Collection(collBots)} }
func (ds *datastore) Datasources() DatasourceStore { return &datasources{ds.client.Collection(collDatasources)} }
func (ds *datastore) Tasks() TaskStore             { return &tasks{ds.client.Collection(collTasks)} }
func (ds *datastore) QAPairs() QAPairStore         { return &qapairs{ds.client.Collection(collQAPairs)} }
func (ds *datastore) Messages() MessageStore       { return &messages{ds.client.Collection(collMessages)} }

func (ds *datastore) Close() error {
	return ds.client.Close()
}

// translateError maps driver errors onto coded errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if err == mongo.ErrNoDocuments {
		return errors.ErrNotFound.WithCause(err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.ErrAlreadyExists.WithCause(err)
	}
	return errors.ErrDatabase.WithCause(err)
}

// getByID decodes the document with the given _id into out.
func getByID(ctx context.Context, coll *mongo.Collection, id string, out interface{}) error {
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out); err != nil {
		return translateError(err)
	}
	return nil
}

// replaceByID overwrites the document with the given _id.
func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc interface{}) error {
	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return errors.ErrNotFound.WithMessagef("document %s not found", id)
	}
	return nil
}

// deleteByID removes the document with the given _id.
func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if result.DeletedCount == 0 {
		return errors.ErrNotFound.WithMessagef("document %s not found", id)
	}
	return nil
}

// findPage runs a paginated find sorted by created_at descending and
// decodes the results into out (a pointer to a slice).
func findPage(ctx context.Context, coll *mongo.Collection, filter bson.M, opts ListOptions, out interface{}) (int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, translateError(err)
	}

	findOpts := mongooptions.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(opts.Offset)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return 0, translateError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	if err := cursor.All(ctx, out); err != nil {
		return 0, translateError(err)
	}
	return total, nil
}
