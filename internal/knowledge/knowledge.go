// Package knowledge is the vector-backed QA knowledge base: approved QA
// pairs are embedded and stored in Milvus, and questions are answered by
// semantic retrieval over them.
package knowledge

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/spf13/pflag"

	"github.com/veaiops/veaiops/pkg/component/milvus"
	"github.com/veaiops/veaiops/pkg/errors"
)

// Embedder turns texts into vectors. Both the Ollama component and the
// Gemini embedder satisfy it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// Backend names accepted by Options.EmbedderBackend.
const (
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

// Options defines configuration options for the knowledge base.
type Options struct {
	Collection      string `json:"collection" mapstructure:"collection"`
	Dimension       int    `json:"dimension" mapstructure:"dimension"`
	EmbedderBackend string `json:"embedder" mapstructure:"embedder"`
	TopK            int    `json:"top-k" mapstructure:"top-k"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Collection:      "veaiops_qa",
		Dimension:       768,
		EmbedderBackend: BackendOllama,
		TopK:            5,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Collection == "" {
		return fmt.Errorf("knowledge collection is required")
	}
	if o.Dimension <= 0 {
		return fmt.Errorf("knowledge dimension must be positive")
	}
	switch o.EmbedderBackend {
	case BackendOllama, BackendGemini:
	default:
		return fmt.Errorf("knowledge embedder must be one of ollama, gemini, got %q", o.EmbedderBackend)
	}
	if o.TopK <= 0 {
		return fmt.Errorf("knowledge top-k must be positive")
	}
	return nil
}

// AddFlags adds flags for knowledge options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, namePrefix string) {
	fs.StringVar(&o.Collection, namePrefix+"collection", o.Collection, "Milvus collection for QA pairs")
	fs.IntVar(&o.Dimension, namePrefix+"dimension", o.Dimension, "Embedding dimension")
	fs.StringVar(&o.EmbedderBackend, namePrefix+"embedder", o.EmbedderBackend, "Embedding backend (ollama or gemini)")
	fs.IntVar(&o.TopK, namePrefix+"top-k", o.TopK, "Default number of retrieval hits")
}

// Hit is one retrieval result.
type Hit struct {
	VectorID int64   `json:"vector_id"`
	QAPairID string  `json:"qapair_id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}

// Service exposes upsert and semantic search over the QA collection.
type Service struct {
	opts     *Options
	store    *milvus.Client
	embedder Embedder
}

// NewService wires the vector store and embedder, ensuring the
// collection exists.
func NewService(ctx context.Context, opts *Options, store *milvus.Client, embedder Embedder) (*Service, error) {
	spec := &milvus.CollectionSpec{
		Name:        opts.Collection,
		Description: "VeAIOps QA knowledge base",
		Dimension:   opts.Dimension,
		Fields: []milvus.VarCharField{
			{Name: "qapair_id", MaxLen: 64},
			{Name: "question", MaxLen: 2048},
			{Name: "answer", MaxLen: 8192},
		},
	}
	if err := store.EnsureCollection(ctx, spec); err != nil {
		return nil, errors.ErrVectorStore.WithCause(err)
	}
	return &Service{opts: opts, store: store, embedder: embedder}, nil
}

// Upsert embeds the QA text and inserts it, replacing any vector already
// stored for the pair. Returns the new vector ID.
func (s *Service) Upsert(ctx context.Context, qapairID, question, answer string, oldVectorID int64) (int64, error) {
	embedding, err := s.embedder.EmbedSingle(ctx, question+"\n"+answer)
	if err != nil {
		return 0, errors.ErrEmbedding.WithCause(err)
	}

	if oldVectorID != 0 {
		if err := s.store.DeleteByIDs(ctx, s.opts.Collection, []int64{oldVectorID}); err != nil {
			logger.Warnw("Failed to delete stale vector", "vector_id", oldVectorID, "error", err)
		}
	}

	ids, err := s.store.InsertDocuments(ctx, s.opts.Collection, []milvus.Document{{
		Embedding: embedding,
		Fields: map[string]string{
			"qapair_id": qapairID,
			"question":  question,
			"answer":    answer,
		},
	}})
	if err != nil {
		return 0, errors.ErrVectorStore.WithCause(err)
	}
	if len(ids) == 0 {
		return 0, errors.ErrVectorStore.WithMessage("insert returned no vector id")
	}

	logger.Infow("QA pair upserted into knowledge base", "qapair_id", qapairID, "vector_id", ids[0])
	return ids[0], nil
}

// Delete removes a pair's vector.
func (s *Service) Delete(ctx context.Context, vectorID int64) error {
	if vectorID == 0 {
		return nil
	}
	if err := s.store.DeleteByIDs(ctx, s.opts.Collection, []int64{vectorID}); err != nil {
		return errors.ErrVectorStore.WithCause(err)
	}
	return nil
}

// Search embeds the query and returns the topK nearest QA pairs. A topK
// of zero uses the configured default.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = s.opts.TopK
	}

	embedding, err := s.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, errors.ErrEmbedding.WithCause(err)
	}

	matches, err := s.store.SearchByVector(ctx, s.opts.Collection, embedding, topK,
		[]string{"qapair_id", "question", "answer"})
	if err != nil {
		return nil, errors.ErrVectorStore.WithCause(err)
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{
			VectorID: m.ID,
			QAPairID: m.Fields["qapair_id"],
			Question: m.Fields["question"],
			Answer:   m.Fields["answer"],
			Score:    m.Score,
		})
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx, s.opts.Collection)
	if err != nil {
		return 0, errors.ErrVectorStore.WithCause(err)
	}
	return n, nil
}
