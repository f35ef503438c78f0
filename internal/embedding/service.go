package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/evidex/evidex/internal/config"
)

// ErrUnavailable wraps every embedding collaborator failure: unreachable
// endpoint, bad response, or a result that does not line up with the
// input. Callers match it with errors.Is.
var ErrUnavailable = errors.New("embedding service unavailable")

// Client is the interface for embedding API clients
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Service provides embedding generation. It batches requests and
// guarantees that output i is the embedding of input i; the vector
// index and chunk store pairing depends on that.
type Service struct {
	cfg    *config.EmbeddingConfig
	client Client
}

// NewService creates a new embedding service
func NewService(cfg *config.EmbeddingConfig) (*Service, error) {
	svc := &Service{cfg: cfg}

	var client Client
	var err error

	switch cfg.Provider {
	case "ollama":
		client, err = NewOllamaClient(cfg)
	case "openai":
		client, err = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	svc.client = client
	return svc, nil
}

// Embed generates an embedding for a single text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	vec, err := s.client.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts in order: result i
// is the embedding of texts[i], and the result always has exactly
// len(texts) entries.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	results := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[start:end]
		embeddings, err := s.client.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %v", ErrUnavailable, start, end, err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d-%d: expected %d embeddings, got %d",
				ErrUnavailable, start, end, len(batch), len(embeddings))
		}

		results = append(results, embeddings...)
	}

	return results, nil
}

// Dimensions returns the dimension of the embeddings
func (s *Service) Dimensions() int {
	return s.client.Dimensions()
}
