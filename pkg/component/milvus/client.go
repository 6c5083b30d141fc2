package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kart-io/logger"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// Client wraps the Milvus SDK client for vector storage.
type Client struct {
	client *milvusclient.Client
	opts   *Options
}

// New connects to Milvus using the given options.
func New(ctx context.Context, opts *Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("milvus options is nil")
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(connectCtx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	logger.Infow("Connected to Milvus", "address", opts.Address, "database", opts.Database)

	return &Client{client: c, opts: opts}, nil
}

// Close closes the Milvus client connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// Raw returns the underlying Milvus client.
func (c *Client) Raw() *milvusclient.Client {
	return c.client
}

// Health checks whether the configured collection metadata is reachable.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.client.ListCollections(ctx, milvusclient.NewListCollectionOption())
	return err
}

// VarCharField describes a scalar VARCHAR field attached to a collection.
type VarCharField struct {
	Name   string
	MaxLen int
}

// CollectionSpec declares a vector collection with scalar payload fields.
type CollectionSpec struct {
	Name        string
	Description string
	Dimension   int
	Fields      []VarCharField
}

// EnsureCollection creates the collection, its vector index and loads it,
// doing nothing if the collection already exists.
func (c *Client) EnsureCollection(ctx context.Context, spec *CollectionSpec) error {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(spec.Name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(spec.Name).
		WithDescription(spec.Description).
		WithAutoID(true)

	schema.WithField(
		entity.NewField().
			WithName("id").
			WithDataType(entity.FieldTypeInt64).
			WithIsPrimaryKey(true).
			WithIsAutoID(true),
	)
	schema.WithField(
		entity.NewField().
			WithName("embedding").
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(spec.Dimension)),
	)
	for _, f := range spec.Fields {
		maxLen := f.MaxLen
		if maxLen <= 0 {
			maxLen = 1024
		}
		schema.WithField(
			entity.NewField().
				WithName(f.Name).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(int64(maxLen)),
		)
	}

	if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(spec.Name, schema)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx := index.NewIvfFlatIndex(entity.L2, 128)
	createIdxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(spec.Name, "embedding", idx))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := createIdxTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for index creation: %w", err)
	}

	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(spec.Name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	logger.Infow("Created Milvus collection", "collection", spec.Name, "dimension", spec.Dimension)
	return nil
}

// Document is one row of vector plus scalar payload to insert.
type Document struct {
	Embedding []float32
	Fields    map[string]string
}

// InsertDocuments inserts documents and flushes so they are searchable
// immediately. All documents must carry the same field set.
func (c *Client) InsertDocuments(ctx context.Context, collectionName string, docs []Document) ([]int64, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(docs))
	for i, d := range docs {
		embeddings[i] = d.Embedding
	}

	columns := []column.Column{
		column.NewColumnFloatVector("embedding", len(embeddings[0]), embeddings),
	}
	for name := range docs[0].Fields {
		values := make([]string, len(docs))
		for i, d := range docs {
			values[i] = d.Fields[name]
		}
		columns = append(columns, column.NewColumnVarChar(name, values))
	}

	result, err := c.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(collectionName, columns...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert documents: %w", err)
	}

	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collectionName))
	if err != nil {
		return nil, fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for flush: %w", err)
	}

	ids := result.IDs.(*column.ColumnInt64).Data()
	return ids, nil
}

// Match is a single similarity search hit.
type Match struct {
	ID     int64
	Score  float32
	Fields map[string]string
}

// SearchByVector runs an ANN search and returns the topK nearest matches
// along with the requested scalar fields.
func (c *Client) SearchByVector(ctx context.Context, collectionName string, vector []float32, topK int, outputFields []string) ([]Match, error) {
	results, err := c.client.Search(ctx, milvusclient.NewSearchOption(
		collectionName,
		topK,
		[]entity.Vector{entity.FloatVector(vector)},
	).WithANNSField("embedding").
		WithSearchParam("nprobe", "16").
		WithOutputFields(outputFields...))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		m := Match{
			Score:  results[0].Scores[i],
			Fields: make(map[string]string),
		}
		if idCol, ok := results[0].IDs.(*column.ColumnInt64); ok {
			m.ID = idCol.Data()[i]
		}
		for _, field := range results[0].Fields {
			if col, ok := field.(*column.ColumnVarChar); ok {
				m.Fields[col.Name()] = col.Data()[i]
			}
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// DeleteByIDs removes documents by primary key.
func (c *Client) DeleteByIDs(ctx context.Context, collectionName string, ids []int64) error {
	if _, err := c.client.Delete(ctx, milvusclient.NewDeleteOption(collectionName).WithInt64IDs("id", ids)); err != nil {
		return fmt.Errorf("failed to delete by ids: %w", err)
	}
	return nil
}

// Count returns the number of entities in a collection.
func (c *Client) Count(ctx context.Context, collectionName string) (int64, error) {
	stats, err := c.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(collectionName))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}
	if val, ok := stats["row_count"]; ok {
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, nil
}
