package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/veaiops/veaiops/pkg/errors"
)

// Gemini is the Google Gemini model client.
type Gemini struct {
	client *genai.Client
	opts   *Options
}

// NewGemini creates a Gemini model client.
func NewGemini(ctx context.Context, opts *Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, opts: opts}, nil
}

// Provider implements ModelClient.
func (g *Gemini) Provider() string {
	return ProviderGemini
}

// Complete implements ModelClient.
func (g *Gemini) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.opts.MaxTokens),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx,
		g.opts.Model,
		[]*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", errors.ErrModelCall.WithCause(err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.ErrModelOutput.WithMessage("gemini returned an empty completion")
	}
	return text, nil
}

// Embedder exposes Gemini's embedding endpoint for the knowledge base.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a Gemini embedder. The zero model defaults to
// gemini-embedding-001 (768 dimensions).
func NewEmbedder(ctx context.Context, apiKey, model string) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Embedder{client: client, model: model}, nil
}

// Embed generates embeddings for the given texts.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, errors.ErrEmbedding.WithCause(err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, errors.ErrEmbedding.WithMessagef("gemini returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *Embedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errors.ErrEmbedding.WithMessage("no embedding returned")
	}
	return embeddings[0], nil
}
