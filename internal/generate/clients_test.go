package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evidex/evidex/internal/config"
)

func TestOllamaGenerate(t *testing.T) {
	var gotPath string
	var gotReq OllamaGenerateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(OllamaGenerateResponse{Response: "Alice said hi.", Done: true})
	}))
	defer srv.Close()

	client, err := NewOllamaClient(&config.GenerationConfig{
		Provider: "ollama",
		Endpoint: srv.URL,
		Model:    "llama3.2",
	})
	if err != nil {
		t.Fatalf("NewOllamaClient failed: %v", err)
	}

	got, err := client.Generate(context.Background(), "What did Alice say?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotPath != "/api/generate" {
		t.Errorf("expected path /api/generate, got %s", gotPath)
	}
	if gotReq.Model != "llama3.2" {
		t.Errorf("expected model llama3.2, got %s", gotReq.Model)
	}
	if gotReq.Prompt != "What did Alice say?" {
		t.Errorf("unexpected prompt: %q", gotReq.Prompt)
	}
	if gotReq.Stream {
		t.Error("expected stream to be false")
	}
	if got != "Alice said hi." {
		t.Errorf("unexpected answer: %q", got)
	}
}

func TestOllamaServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewOllamaClient(&config.GenerationConfig{Provider: "ollama", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewOllamaClient failed: %v", err)
	}

	if _, err := client.Generate(context.Background(), "question"); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth string
	var gotReq OpenAIChatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		var resp OpenAIChatResponse
		resp.Choices = []struct {
			Message      OpenAIChatMessage `json:"message"`
			FinishReason string            `json:"finish_reason"`
		}{
			{Message: OpenAIChatMessage{Role: "assistant", Content: "Three calls."}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(&config.GenerationConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Endpoint: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient failed: %v", err)
	}

	got, err := client.Generate(context.Background(), "How many calls?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected Authorization header: %q", gotAuth)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", gotReq.Messages)
	}
	if gotReq.Messages[0].Content != "How many calls?" {
		t.Errorf("unexpected message content: %q", gotReq.Messages[0].Content)
	}
	if got != "Three calls." {
		t.Errorf("unexpected answer: %q", got)
	}
}

func TestOpenAIRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIClient(&config.GenerationConfig{Provider: "openai"})
	if err == nil {
		t.Error("expected error for missing api key")
	}
}

func TestOpenAINoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(OpenAIChatResponse{})
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(&config.GenerationConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Endpoint: srv.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient failed: %v", err)
	}

	if _, err := client.Generate(context.Background(), "question"); err == nil {
		t.Error("expected error for empty choices")
	}
}
