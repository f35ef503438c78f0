package generate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/evidex/evidex/internal/config"
)

type fakeClient struct {
	answer string
	fail   bool
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("connection refused")
	}
	return f.answer, nil
}

func TestGenerate(t *testing.T) {
	svc := &Service{
		cfg:    &config.GenerationConfig{Provider: "ollama"},
		client: &fakeClient{answer: "the answer"},
	}

	got, err := svc.Generate(context.Background(), "the question")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "the answer" {
		t.Errorf("expected 'the answer', got %q", got)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	svc := &Service{
		cfg:    &config.GenerationConfig{Provider: "ollama"},
		client: &fakeClient{answer: "the answer"},
	}

	if _, err := svc.Generate(context.Background(), ""); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestGenerateWrapsClientFailure(t *testing.T) {
	svc := &Service{
		cfg:    &config.GenerationConfig{Provider: "ollama"},
		client: &fakeClient{fail: true},
	}

	_, err := svc.Generate(context.Background(), "the question")
	if err == nil {
		t.Fatal("expected error from failing client")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewServiceUnknownProvider(t *testing.T) {
	_, err := NewService(&config.GenerationConfig{Provider: "watson"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
