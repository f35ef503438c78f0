package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRebuildAndFetch(t *testing.T) {
	db := openTestDB(t)

	chunks := []string{
		"Chat from Alice at 2024-01-01T10:00: Hello",
		"Call log at 2024-01-01T11:00: Incoming call with Bob",
		"Contact entry: Name is Carol, Number is 555-0100",
	}
	if err := db.Rebuild(chunks, SessionMeta{Filename: "report.zip", Dimension: 768}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	texts, err := db.Fetch([]int{0, 1, 2})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(texts) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(texts))
	}
	for i, want := range chunks {
		if texts[i] != want {
			t.Errorf("position %d: expected %q, got %q", i, want, texts[i])
		}
	}
}

func TestFetchMissingPositions(t *testing.T) {
	db := openTestDB(t)

	if err := db.Rebuild([]string{"only chunk"}, SessionMeta{Filename: "r.zip"}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	texts, err := db.Fetch([]int{0, 7, 42})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(texts) != 1 {
		t.Errorf("expected 1 chunk, got %d", len(texts))
	}
	if _, ok := texts[7]; ok {
		t.Error("expected no entry for missing position 7")
	}

	texts, err = db.Fetch(nil)
	if err != nil {
		t.Fatalf("Fetch of no positions failed: %v", err)
	}
	if len(texts) != 0 {
		t.Errorf("expected empty result, got %v", texts)
	}
}

func TestRebuildReplacesEverything(t *testing.T) {
	db := openTestDB(t)

	first := []string{"a", "b", "c", "d", "e"}
	if err := db.Rebuild(first, SessionMeta{Filename: "first.zip"}); err != nil {
		t.Fatalf("first Rebuild failed: %v", err)
	}

	second := []string{"x", "y"}
	if err := db.Rebuild(second, SessionMeta{Filename: "second.zip"}); err != nil {
		t.Fatalf("second Rebuild failed: %v", err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 chunks after rebuild, got %d", count)
	}

	// Positions beyond the new session must be gone.
	texts, err := db.Fetch([]int{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !reflect.DeepEqual(texts, map[int]string{0: "x", 1: "y"}) {
		t.Errorf("leftover chunks from first build: %v", texts)
	}

	meta, err := db.Meta()
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if meta == nil || meta.Filename != "second.zip" {
		t.Errorf("expected metadata from second build, got %+v", meta)
	}
}

func TestAllChunksOrder(t *testing.T) {
	db := openTestDB(t)

	chunks := []string{"third", "first", "second"}
	if err := db.Rebuild(chunks, SessionMeta{Filename: "r.zip"}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	got, err := db.AllChunks()
	if err != nil {
		t.Fatalf("AllChunks failed: %v", err)
	}
	if !reflect.DeepEqual(got, chunks) {
		t.Errorf("expected %v, got %v", chunks, got)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	meta, err := db.Meta()
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if meta != nil {
		t.Fatalf("expected no metadata before first build, got %+v", meta)
	}

	builtAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	want := SessionMeta{
		Filename:     "evidence.zip",
		Dimension:    768,
		ChatCount:    10,
		CallCount:    4,
		ContactCount: 2,
		BuiltAt:      builtAt,
	}
	if err := db.Rebuild([]string{"chunk"}, want); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	meta, err = db.Meta()
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if meta == nil {
		t.Fatal("expected metadata after build")
	}
	if !reflect.DeepEqual(*meta, want) {
		t.Errorf("expected %+v, got %+v", want, *meta)
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Rebuild([]string{"persisted chunk"}, SessionMeta{Filename: "r.zip"}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	texts, err := reopened.Fetch([]int{0})
	if err != nil {
		t.Fatalf("Fetch after reopen failed: %v", err)
	}
	if texts[0] != "persisted chunk" {
		t.Errorf("chunk did not survive reopen: %v", texts)
	}
}

func TestRebuildEmptySession(t *testing.T) {
	db := openTestDB(t)

	if err := db.Rebuild([]string{"a"}, SessionMeta{Filename: "r.zip"}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if err := db.Rebuild(nil, SessionMeta{Filename: "empty.zip"}); err != nil {
		t.Fatalf("empty Rebuild failed: %v", err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 chunks, got %d", count)
	}
}

func TestRebuildOnClosedDB(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	db.Close()

	err = db.Rebuild([]string{"chunk"}, SessionMeta{Filename: "r.zip"})
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed on closed database, got %v", err)
	}
}
