package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingDimensions is the vector length produced by text-embedding-3-small.
const EmbeddingDimensions = 1536

// EmbeddingProviderImpl implements EmbeddingProvider using OpenAI embeddings.
type EmbeddingProviderImpl struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbeddingProvider creates a new embedding provider using
// text-embedding-3-small by default.
func NewEmbeddingProvider(apiKey string) *EmbeddingProviderImpl {
	return &EmbeddingProviderImpl{
		client: openai.NewClient(apiKey),
		model:  openai.SmallEmbedding3,
	}
}

// GenerateEmbedding produces a vector embedding for the given text. There is
// no retry here: a failed call is reported to the caller as-is.
func (p *EmbeddingProviderImpl) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("embedding text is empty")
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: p.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API error: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding API returned empty result")
	}
	if n := len(resp.Data[0].Embedding); n != EmbeddingDimensions {
		return nil, fmt.Errorf("embedding API returned %d dimensions, want %d", n, EmbeddingDimensions)
	}
	return resp.Data[0].Embedding, nil
}
