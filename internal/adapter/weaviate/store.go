// Package weaviate is the optional server-backed embedding index, selected
// when WEAVIATE_HOST is configured. It mirrors the embedded store's contract
// on a Weaviate class with externally supplied vectors.
package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"portfolio/backend/internal/knowledge"
	"portfolio/backend/internal/retrieval"
)

const className = "PortfolioChunk"

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Add(ctx context.Context, chunks []knowledge.Document, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	objects := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		// Deterministic content-derived IDs so re-indexing overwrites.
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunk.Content))
		objects[i] = &models.Object{
			ID:    strfmt.UUID(id.String()),
			Class: className,
			Properties: map[string]interface{}{
				"content":  chunk.Content,
				"type":     chunk.Metadata.Type,
				"name":     chunk.Metadata.Name,
				"url":      chunk.Metadata.URL,
				"language": chunk.Metadata.Language,
				"source":   chunk.Metadata.Source,
			},
			Vector: vectors[i],
		}
	}

	_, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	return err
}

func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]retrieval.Result, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "type"},
		{Name: "name"},
		{Name: "url"},
		{Name: "language"},
		{Name: "source"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []retrieval.Result
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	hits, ok := data[className].([]interface{})
	if !ok {
		return results, nil
	}

	for _, h := range hits {
		props, ok := h.(map[string]interface{})
		if !ok {
			continue
		}

		result := retrieval.Result{
			Doc: knowledge.Document{
				Content: str(props, "content"),
				Metadata: knowledge.Metadata{
					Type:     str(props, "type"),
					Name:     str(props, "name"),
					URL:      str(props, "url"),
					Language: str(props, "language"),
					Source:   str(props, "source"),
				},
			},
		}

		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				// Weaviate reports certainty in [0,1]; convert back to cosine.
				result.Similarity = float32(certainty*2 - 1)
			}
		}

		results = append(results, result)
	}

	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	data, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := data[className].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

func str(props map[string]interface{}, key string) string {
	v, _ := props[key].(string)
	return v
}
