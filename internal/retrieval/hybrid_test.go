package retrieval

import (
	"reflect"
	"testing"

	"github.com/evidex/evidex/internal/index"
	"github.com/evidex/evidex/internal/keyword"
)

func TestMergeHitsOverlapBoost(t *testing.T) {
	vecHits := []index.Hit{
		{Position: 0, Distance: 0.1},
		{Position: 1, Distance: 0.2},
	}
	// Position 1 also matches on keywords, which should lift it above
	// the slightly closer position 0.
	kwHits := []keyword.Hit{
		{Position: 1, Score: 4.2},
	}

	got := mergeHits(vecHits, kwHits, 0.5, 0.5, 5)
	want := []int{1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMergeHitsVectorOnlyWeights(t *testing.T) {
	vecHits := []index.Hit{
		{Position: 0, Distance: 1.0},
		{Position: 1, Distance: 0.5},
	}
	kwHits := []keyword.Hit{
		{Position: 0, Score: 9.9},
	}

	// Zero keyword weight: keyword matches must not affect the order.
	got := mergeHits(vecHits, kwHits, 1.0, 0, 5)
	want := []int{1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMergeHitsZeroWeightsFallBackToVector(t *testing.T) {
	vecHits := []index.Hit{
		{Position: 3, Distance: 0.2},
		{Position: 7, Distance: 0.9},
	}
	kwHits := []keyword.Hit{
		{Position: 7, Score: 1.0},
	}

	got := mergeHits(vecHits, kwHits, 0, 0, 5)
	want := []int{3, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMergeHitsKeywordOnlyPositions(t *testing.T) {
	vecHits := []index.Hit{
		{Position: 0, Distance: 0.1},
	}
	kwHits := []keyword.Hit{
		{Position: 5, Score: 2.0},
		{Position: 6, Score: 1.0},
	}

	got := mergeHits(vecHits, kwHits, 0.5, 0.5, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 positions, got %v", got)
	}
	// Keyword-only positions must survive the merge.
	seen := map[int]bool{}
	for _, pos := range got {
		seen[pos] = true
	}
	for _, pos := range []int{0, 5, 6} {
		if !seen[pos] {
			t.Errorf("position %d missing from merge: %v", pos, got)
		}
	}
}

func TestMergeHitsTopKCap(t *testing.T) {
	var vecHits []index.Hit
	for i := 0; i < 10; i++ {
		vecHits = append(vecHits, index.Hit{Position: i, Distance: float32(i)})
	}

	got := mergeHits(vecHits, nil, 1.0, 0, 3)
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMergeHitsTieBreakByPosition(t *testing.T) {
	vecHits := []index.Hit{
		{Position: 9, Distance: 0.5},
		{Position: 2, Distance: 0.5},
	}

	got := mergeHits(vecHits, nil, 1.0, 0, 5)
	want := []int{2, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
