package retrieval

import (
	"context"
	"fmt"
	"time"

	"portfolio/backend/internal/knowledge"
)

// Result is one similarity-search hit, ordered by descending similarity.
type Result struct {
	Doc        knowledge.Document
	Similarity float32
}

// Embedder maps text to a fixed-dimension vector. The same embedder must be
// used for indexing and querying; mismatched embedding spaces silently produce
// meaningless similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the similarity index. Add is append-only; Search never
// mutates the index.
type VectorStore interface {
	Add(ctx context.Context, chunks []knowledge.Document, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, limit int) ([]Result, error)
	Count(ctx context.Context) (int, error)
}

type Service struct {
	embedder Embedder
	store    VectorStore
	topK     int
	logger   *QueryLogger
}

func NewService(e Embedder, s VectorStore, topK int, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, topK: topK, logger: l}
}

// Index embeds every chunk and appends it to the store. Called once per
// session during initialization.
func (s *Service) Index(ctx context.Context, chunks []knowledge.Document) error {
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return s.store.Add(ctx, chunks, vectors)
}

// Retrieve returns the top-K most similar chunks for the question.
func (s *Service) Retrieve(ctx context.Context, question string) ([]knowledge.Document, error) {
	start := time.Now()

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	if s.logger != nil {
		entry := QueryLogEntry{
			Query:      question,
			NumResults: len(results),
			Duration:   time.Since(start),
		}
		if len(results) > 0 {
			entry.TopSimilarity = results[0].Similarity
			entry.TopSource = results[0].Doc.Metadata.Name
		}
		s.logger.Log(entry)
	}

	docs := make([]knowledge.Document, len(results))
	for i, r := range results {
		docs[i] = r.Doc
	}
	return docs, nil
}
