// Package index provides an exact nearest-neighbor index over chunk
// embeddings. Per-report volumes are modest (hundreds to low thousands
// of vectors), so a flat brute-force scan beats an approximate
// structure on both correctness and determinism.
package index

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBuildFailed wraps every index construction failure: an empty
// vector set, a dimension mismatch, or a persistence error. Callers
// match it with errors.Is.
var ErrBuildFailed = errors.New("index build failed")

// Hit is a single search result. Position refers back to the chunk
// store row built from the same report.
type Hit struct {
	Position int
	Distance float32
}

// Flat is an exact squared-Euclidean nearest-neighbor index. The vector
// at position i always describes chunk i of the same build; every
// retrieval depends on that pairing.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Build constructs an index over the given vectors. Positions are
// assigned from the input order: vector i gets position i. The index
// retains the given slices.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors to index", ErrBuildFailed)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: vector 0 is empty", ErrBuildFailed)
	}

	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrBuildFailed, i, len(vec), dim)
		}
	}

	return &Flat{dim: dim, vectors: vectors}, nil
}

// Search returns up to k hits ordered by ascending distance, ties
// broken by ascending position. An index with fewer than k vectors
// returns all of them.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, expected %d", len(query), f.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(f.vectors))
	for i, vec := range f.vectors {
		hits[i] = Hit{Position: i, Distance: squaredL2(query, vec)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Position < hits[j].Position
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// Len returns the number of indexed vectors
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Dimensions returns the vector dimension of the index
func (f *Flat) Dimensions() int {
	return f.dim
}

// squaredL2 computes the squared Euclidean distance between two vectors
// of equal length
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
