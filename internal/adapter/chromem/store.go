// Package chromem is the default embedding index: an embedded vector store
// persisted to a directory and reopened across process restarts.
package chromem

import (
	"context"
	"crypto/sha256"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/retrieval"
)

const collectionName = "portfolio_knowledge"

type Store struct {
	coll *chromem.Collection
}

// NewStore opens (or creates) the persistent collection under dir. Vectors
// are always supplied precomputed, so the collection's embedding function is
// only a safety net and delegates to the same embedder used for queries.
func NewStore(dir string, embedder retrieval.Embedder) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open index directory: %w", err)
	}

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	coll, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	return &Store{coll: coll}, nil
}

func (s *Store) Add(ctx context.Context, chunks []knowledge.Document, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			// Content-derived IDs make re-indexing after a restart an
			// overwrite instead of a duplicate.
			ID:        fmt.Sprintf("%x", sha256.Sum256([]byte(chunk.Content))),
			Content:   chunk.Content,
			Embedding: vectors[i],
			Metadata:  encodeMetadata(chunk.Metadata),
		}
	}

	return s.coll.AddDocuments(ctx, docs, runtime.NumCPU())
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]retrieval.Result, error) {
	// chromem rejects queries asking for more results than stored documents.
	if count := s.coll.Count(); limit > count {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}

	hits, err := s.coll.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, err
	}

	results := make([]retrieval.Result, len(hits))
	for i, h := range hits {
		results[i] = retrieval.Result{
			Doc: knowledge.Document{
				Content:  h.Content,
				Metadata: decodeMetadata(h.Metadata),
			},
			Similarity: h.Similarity,
		}
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.coll.Count(), nil
}

func encodeMetadata(m knowledge.Metadata) map[string]string {
	return map[string]string{
		"type":     m.Type,
		"name":     m.Name,
		"url":      m.URL,
		"language": m.Language,
		"source":   m.Source,
	}
}

func decodeMetadata(m map[string]string) knowledge.Metadata {
	return knowledge.Metadata{
		Type:     m["type"],
		Name:     m["name"],
		URL:      m["url"],
		Language: m["language"],
		Source:   m["source"],
	}
}
