package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/evidex/evidex/internal/config"
)

// fakeClient returns a deterministic vector per text and records the
// batch sizes it was asked for
type fakeClient struct {
	batches []int
	fail    bool
	short   bool
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("connection refused")
	}
	f.batches = append(f.batches, len(texts))
	if f.short {
		return make([][]float32, len(texts)-1), nil
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 0, 0}
	}
	return out, nil
}

func (f *fakeClient) Dimensions() int { return 3 }

func newTestService(client Client, batchSize int) *Service {
	return &Service{
		cfg:    &config.EmbeddingConfig{BatchSize: batchSize},
		client: client,
	}
}

func TestEmbedBatchOrderAndBatching(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		// Unique lengths give unique marker vectors
		texts[i] = fmt.Sprintf("%0*d", i+1, 0)
	}

	client := &fakeClient{}
	svc := newTestService(client, 10)

	vectors, err := svc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(len(texts[i])) {
			t.Errorf("vector %d = %v, does not match text %d", i, v, i)
		}
	}

	wantBatches := []int{10, 10, 5}
	if len(client.batches) != len(wantBatches) {
		t.Fatalf("expected %d batches, got %v", len(wantBatches), client.batches)
	}
	for i, want := range wantBatches {
		if client.batches[i] != want {
			t.Errorf("batch %d size = %d, want %d", i, client.batches[i], want)
		}
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	svc := newTestService(&fakeClient{}, 10)
	vectors, err := svc.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil result for empty input, got %v", vectors)
	}
}

func TestEmbedBatchClientFailure(t *testing.T) {
	svc := newTestService(&fakeClient{fail: true}, 10)
	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	svc := newTestService(&fakeClient{short: true}, 10)
	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on short result, got %v", err)
	}
}

func TestEmbedEmptyText(t *testing.T) {
	svc := newTestService(&fakeClient{}, 10)
	if _, err := svc.Embed(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestEmbedWrapsClientFailure(t *testing.T) {
	svc := newTestService(&fakeClient{fail: true}, 10)
	_, err := svc.Embed(context.Background(), "question")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewServiceUnknownProvider(t *testing.T) {
	_, err := NewService(&config.EmbeddingConfig{Provider: "word2vec"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
