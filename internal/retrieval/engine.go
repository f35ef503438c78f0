// Package retrieval owns the active report session: it drives the
// build pipeline (parse, project, embed, index, store) and the query
// pipeline (embed, search, fetch, generate) over the same artifacts.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/evidex/evidex/internal/config"
	"github.com/evidex/evidex/internal/embedding"
	"github.com/evidex/evidex/internal/generate"
	"github.com/evidex/evidex/internal/index"
	"github.com/evidex/evidex/internal/keyword"
	"github.com/evidex/evidex/internal/report"
	"github.com/evidex/evidex/internal/store"
)

// ErrNoActiveSession means a query arrived before any report was
// successfully processed. Callers match it with errors.Is.
var ErrNoActiveSession = errors.New("no report has been uploaded and processed yet")

// Embedder turns text into fixed-dimension vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from an assembled prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine ties the pipeline components together around a single active
// session. Builds take the write lock for their full duration; queries
// hold the read lock across search and fetch so they never observe a
// half-replaced (index, store) pair.
type Engine struct {
	mu  sync.RWMutex
	cfg *config.Config

	parser   *report.Parser
	embedder Embedder
	db       *store.DB

	// The generation client is dialed lazily on first query, so the
	// server starts (and uploads work) without a reachable model.
	genMu        sync.Mutex
	gen          Generator
	genInit      bool
	newGenerator func() (Generator, error)

	idx *index.Flat
	kw  *keyword.Index
}

// BuildResult summarizes a processed report
type BuildResult struct {
	Filename string
	Chunks   int
	Chats    int
	Calls    int
	Contacts int
	Duration time.Duration
}

// Stats describes the current session
type Stats struct {
	Active         bool      `json:"active"`
	Filename       string    `json:"filename,omitempty"`
	Chunks         int       `json:"chunks"`
	Chats          int       `json:"chats"`
	Calls          int       `json:"calls"`
	Contacts       int       `json:"contacts"`
	Dimension      int       `json:"dimension,omitempty"`
	BuiltAt        time.Time `json:"built_at,omitzero"`
	StoreSizeBytes int64     `json:"store_size_bytes"`
}

// NewEngine creates a new engine
func NewEngine(cfg *config.Config) (*Engine, error) {
	db, err := store.Open(cfg.Storage.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk store: %w", err)
	}

	embedder, err := embedding.NewService(&cfg.Embedding)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		parser:   report.NewParser(cfg.Archive.MemberPattern),
		embedder: embedder,
		db:       db,
		newGenerator: func() (Generator, error) {
			return generate.NewService(&cfg.Generation)
		},
	}, nil
}

// Close releases the session artifacts
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.kw != nil {
		e.kw.Close()
		e.kw = nil
	}
	return e.db.Close()
}

// BuildSession runs the full build pipeline over an uploaded archive,
// replacing any previous session
func (e *Engine) BuildSession(ctx context.Context, archive []byte, filename string) (*BuildResult, error) {
	return e.BuildSessionWithProgress(ctx, archive, filename, nil)
}

// BuildSessionWithProgress is BuildSession with embedding progress
// reporting. The whole pipeline runs under the write lock: no query may
// observe the session while any of its parts is being replaced.
func (e *Engine) BuildSessionWithProgress(ctx context.Context, archive []byte, filename string, reporter ProgressReporter) (*BuildResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	startTime := time.Now()

	// Step 1: Parse the report archive
	log.Printf("Parsing report %s", filename)
	records, err := e.parser.Parse(archive)
	if err != nil {
		return nil, err
	}
	chats, calls, contacts := report.CountKinds(records)
	log.Printf("Extracted %d records (%d chats, %d calls, %d contacts)", len(records), chats, calls, contacts)

	// Step 2: Project records into chunks
	chunks := report.ProjectAll(records)

	// Step 3: Generate embeddings
	log.Printf("Generating embeddings for %d chunks", len(chunks))
	vectors, err := e.embedChunks(ctx, chunks, reporter)
	if err != nil {
		return nil, err
	}

	// Step 4: Build and persist the vector index
	idx, err := index.Build(vectors)
	if err != nil {
		return nil, err
	}
	if err := idx.Save(e.cfg.Storage.IndexPath()); err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrBuildFailed, err)
	}

	// Step 5: Rebuild the chunk store. Kept adjacent to the index save
	// so the window where the two artifacts disagree is as small as it
	// can be made.
	meta := store.SessionMeta{
		Filename:     filename,
		Dimension:    idx.Dimensions(),
		ChatCount:    chats,
		CallCount:    calls,
		ContactCount: contacts,
		BuiltAt:      time.Now().UTC(),
	}
	if err := e.db.Rebuild(chunks, meta); err != nil {
		return nil, err
	}

	// Step 6: Rebuild the keyword index. Failure degrades hybrid search
	// to vector-only instead of failing the upload.
	kw, err := keyword.Rebuild(e.cfg.Storage.KeywordDir(), chunks)
	if err != nil {
		log.Printf("Warning: keyword index rebuild failed: %v", err)
		kw = nil
	}
	if e.kw != nil {
		e.kw.Close()
	}
	e.kw = kw
	e.idx = idx

	duration := time.Since(startTime)
	log.Printf("Report %s processed in %v", filename, duration)

	return &BuildResult{
		Filename: filename,
		Chunks:   len(chunks),
		Chats:    chats,
		Calls:    calls,
		Contacts: contacts,
		Duration: duration,
	}, nil
}

// embedChunks embeds chunk batches in order. Vector i of the result is
// the embedding of chunks[i]; the index and store positions both hang
// off that ordering.
func (e *Engine) embedChunks(ctx context.Context, chunks []string, reporter ProgressReporter) ([][]float32, error) {
	if reporter != nil {
		reporter.Start(len(chunks))
		defer reporter.Finish()
	}

	batchSize := e.cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch, err := e.embedder.EmbedBatch(ctx, chunks[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)

		if reporter != nil {
			for range batch {
				reporter.Increment()
			}
		}
	}

	return vectors, nil
}

// Answer runs the query pipeline: retrieve context for the question
// from the active session, then hand the assembled prompt to the
// generation collaborator
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question must not be empty")
	}

	e.mu.RLock()
	if e.idx == nil {
		e.mu.RUnlock()
		if err := e.recoverSession(); err != nil {
			return "", err
		}
		e.mu.RLock()
	}

	chunks, err := e.retrieve(ctx, question)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}

	gen, err := e.generator()
	if err != nil {
		return "", err
	}

	// Generation runs outside the session lock: a slow model must not
	// block report uploads.
	answer, err := gen.Generate(ctx, buildPrompt(question, chunks))
	if err != nil {
		return "", err
	}
	return answer, nil
}

// retrieve embeds the question, searches the index and fetches the
// matching chunks in hit order. Caller holds the read lock.
func (e *Engine) retrieve(ctx context.Context, question string) ([]string, error) {
	qvec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	topK := e.cfg.Search.TopK
	if topK <= 0 {
		topK = 5
	}

	hits, err := e.idx.Search(qvec, topK)
	if err != nil {
		return nil, err
	}

	positions := make([]int, len(hits))
	for i, hit := range hits {
		positions[i] = hit.Position
	}

	if e.cfg.Search.Mode == "hybrid" && e.kw != nil {
		kwHits, err := e.kw.Search(question, topK)
		if err != nil {
			log.Printf("Warning: keyword search failed: %v", err)
		} else if len(kwHits) > 0 {
			positions = mergeHits(hits, kwHits, e.cfg.Search.VectorWeight, e.cfg.Search.KeywordWeight, topK)
		}
	}

	texts, err := e.db.Fetch(positions)
	if err != nil {
		return nil, err
	}

	ordered := make([]string, 0, len(positions))
	for _, pos := range positions {
		text, ok := texts[pos]
		if !ok {
			log.Printf("Warning: no chunk stored for position %d, skipping", pos)
			continue
		}
		ordered = append(ordered, text)
	}

	return ordered, nil
}

// recoverSession reloads a previously persisted session from disk. It
// runs when a query arrives after a restart, before any upload.
func (e *Engine) recoverSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.idx != nil {
		return nil
	}

	indexPath := e.cfg.Storage.IndexPath()
	if _, err := os.Stat(indexPath); err != nil {
		return ErrNoActiveSession
	}

	count, err := e.db.Count()
	if err != nil {
		return fmt.Errorf("failed to inspect chunk store: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: index file exists but chunk store is empty", ErrNoActiveSession)
	}

	idx, err := index.Load(indexPath)
	if err != nil {
		return fmt.Errorf("failed to load persisted index: %w", err)
	}
	if idx.Len() != count {
		log.Printf("Warning: index has %d vectors but store has %d chunks", idx.Len(), count)
	}
	e.idx = idx

	if kw, err := keyword.Open(e.cfg.Storage.KeywordDir()); err == nil {
		e.kw = kw
	} else if e.cfg.Search.Mode == "hybrid" {
		chunks, cerr := e.db.AllChunks()
		if cerr != nil {
			log.Printf("Warning: cannot rebuild keyword index: %v", cerr)
		} else if kw, kerr := keyword.Rebuild(e.cfg.Storage.KeywordDir(), chunks); kerr == nil {
			e.kw = kw
		} else {
			log.Printf("Warning: keyword index rebuild failed: %v", kerr)
		}
	}

	log.Printf("Recovered session from disk (%d chunks)", count)
	return nil
}

// generator returns the generation client, dialing it on first use
func (e *Engine) generator() (Generator, error) {
	e.genMu.Lock()
	defer e.genMu.Unlock()

	if !e.genInit {
		gen, err := e.newGenerator()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", generate.ErrUnavailable, err)
		}
		e.gen = gen
		e.genInit = true
	}
	return e.gen, nil
}

// SessionStats reports on the current session
func (e *Engine) SessionStats() (*Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	meta, err := e.db.Meta()
	if err != nil {
		return nil, err
	}
	count, err := e.db.Count()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Chunks:         count,
		StoreSizeBytes: e.db.SizeBytes(),
	}
	if meta != nil {
		stats.Active = count > 0
		stats.Filename = meta.Filename
		stats.Dimension = meta.Dimension
		stats.Chats = meta.ChatCount
		stats.Calls = meta.CallCount
		stats.Contacts = meta.ContactCount
		stats.BuiltAt = meta.BuiltAt
	}
	return stats, nil
}
