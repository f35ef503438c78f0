// Package keyword maintains a full-text index over the chunks of the
// active session. It backs the hybrid search mode; vector retrieval
// works without it.
package keyword

import (
	"fmt"
	"os"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Hit is a single keyword search result. Position refers to the same
// chunk positions the vector index uses.
type Hit struct {
	Position int
	Score    float64
}

// Index wraps a bleve full-text index keyed by chunk position
type Index struct {
	idx bleve.Index
}

type chunkDoc struct {
	Content string `json:"content"`
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Rebuild wipes the index directory and indexes the given chunks from
// scratch. Chunk i is indexed under document ID i, mirroring the
// positions of the vector index built from the same session.
func Rebuild(dir string, chunks []string) (*Index, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("reset keyword index dir: %w", err)
	}

	idx, err := bleve.New(dir, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}

	for i, chunk := range chunks {
		if err := idx.Index(strconv.Itoa(i), chunkDoc{Content: chunk}); err != nil {
			idx.Close()
			return nil, fmt.Errorf("index chunk %d: %w", i, err)
		}
	}

	return &Index{idx: idx}, nil
}

// Open opens an existing keyword index directory
func Open(dir string) (*Index, error) {
	idx, err := bleve.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open keyword index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Search returns up to topK chunk positions matching the query,
// best-scoring first
func (x *Index) Search(query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	match := bleve.NewMatchQuery(query)
	match.SetField("content")

	req := bleve.NewSearchRequestOptions(match, topK, 0, false)
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	var hits []Hit
	for _, hit := range res.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{Position: pos, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the underlying index
func (x *Index) Close() error {
	return x.idx.Close()
}
