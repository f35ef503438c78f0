package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildAndSearch(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 0},
		{1, 0},
		{0, 3},
		{10, 10},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if idx.Len() != 4 {
		t.Errorf("expected 4 vectors, got %d", idx.Len())
	}
	if idx.Dimensions() != 2 {
		t.Errorf("expected dimension 2, got %d", idx.Dimensions())
	}

	hits, err := idx.Search([]float32{0.9, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	wantPositions := []int{1, 0, 2}
	if len(hits) != len(wantPositions) {
		t.Fatalf("expected %d hits, got %d", len(wantPositions), len(hits))
	}
	for i, want := range wantPositions {
		if hits[i].Position != want {
			t.Errorf("hit %d: expected position %d, got %d", i, want, hits[i].Position)
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits not ordered by distance: %v", hits)
		}
	}
}

func TestSearchSelfIsTopHit(t *testing.T) {
	vectors := [][]float32{
		{1, 1, 1},
		{2, 2, 2},
		{3, 3, 3},
	}
	idx, err := Build(vectors)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i, vec := range vectors {
		hits, err := idx.Search(vec, 1)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 1 || hits[0].Position != i {
			t.Errorf("query for vector %d: expected top hit %d, got %+v", i, i, hits)
		}
		if hits[0].Distance != 0 {
			t.Errorf("query for vector %d: expected distance 0, got %f", i, hits[0].Distance)
		}
	}
}

func TestSearchTieBreakByPosition(t *testing.T) {
	// Positions 0..3 are all equidistant from the origin.
	idx, err := Build([][]float32{
		{1, 0},
		{0, 1},
		{-1, 0},
		{0, -1},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hits, err := idx.Search([]float32{0, 0}, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for i, hit := range hits {
		if hit.Position != i {
			t.Errorf("tie not broken by position: hit %d has position %d", i, hit.Position)
		}
	}
}

func TestSearchKBound(t *testing.T) {
	idx, err := Build([][]float32{{1}, {2}, {3}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hits, err := idx.Search([]float32{0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("expected all 3 hits for k=5, got %d", len(hits))
	}

	hits, err = idx.Search([]float32{0}, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits for k=0, got %d", len(hits))
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
	}{
		{"empty set", nil},
		{"empty vector", [][]float32{{}}},
		{"dimension mismatch", [][]float32{{1, 2}, {1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.vectors)
			if !errors.Is(err, ErrBuildFailed) {
				t.Errorf("expected ErrBuildFailed, got %v", err)
			}
		})
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx, err := Build([][]float32{{1, 2}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := idx.Search([]float32{1, 2, 3}, 1); err == nil {
		t.Error("expected error for mismatched query dimension")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	vectors := [][]float32{
		{0.5, -1.25, 3.75},
		{100.001, 0, -0.0001},
		{1, 2, 3},
	}
	idx, err := Build(vectors)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "report.index")
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after Save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Len() != idx.Len() {
		t.Fatalf("expected %d vectors after load, got %d", idx.Len(), loaded.Len())
	}
	if loaded.Dimensions() != idx.Dimensions() {
		t.Fatalf("expected dimension %d after load, got %d", idx.Dimensions(), loaded.Dimensions())
	}

	// Every original vector must still resolve to its own position at
	// distance zero.
	for i, vec := range vectors {
		hits, err := loaded.Search(vec, 1)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(hits) != 1 || hits[0].Position != i || hits[0].Distance != 0 {
			t.Errorf("vector %d did not round-trip exactly: %+v", i, hits)
		}
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		blob []byte
	}{
		{"truncated", []byte("EVIX")},
		{"bad magic", append([]byte("XXXX"), make([]byte, 12)...)},
		{"size mismatch", append([]byte{'E', 'V', 'I', 'X', 1, 0, 0, 0, 2, 0, 0, 0, 5, 0, 0, 0}, 1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.blob, 0o644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error for corrupt index file")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.index")); err == nil {
		t.Error("expected error for missing index file")
	}
}
