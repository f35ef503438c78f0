package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/evidex/evidex/internal/config"
)

// ErrUnavailable wraps every generation collaborator failure:
// unreachable endpoint, timeout, or a malformed response. Callers match
// it with errors.Is.
var ErrUnavailable = errors.New("generation service unavailable")

// Client is the interface for text-generation API clients
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service produces analyst answers from an assembled prompt. It is a
// thin gateway: one prompt in, one completion out, no retries.
type Service struct {
	cfg    *config.GenerationConfig
	client Client
}

// NewService creates a new generation service
func NewService(cfg *config.GenerationConfig) (*Service, error) {
	svc := &Service{cfg: cfg}

	var client Client
	var err error

	switch cfg.Provider {
	case "ollama":
		client, err = NewOllamaClient(cfg)
	case "openai":
		client, err = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	svc.client = client
	return svc, nil
}

// Generate produces a completion for the given prompt
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("cannot generate from empty prompt")
	}

	answer, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return answer, nil
}
