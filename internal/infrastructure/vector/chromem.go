// Package vector ranks article chunks by embedding similarity with an
// in-memory chromem-go collection.
package vector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"HeadlineScreener/internal/ports"
)

// ChromemSelector implements ports.ExcerptSelector. Chunks are embedded into a
// throwaway collection which is then queried with target vectors.
type ChromemSelector struct {
	embed       chromem.EmbeddingFunc
	concurrency int
}

var _ ports.ExcerptSelector = (*ChromemSelector)(nil)

// NewChromemSelector embeds chunks with embedder using up to concurrency workers.
func NewChromemSelector(embedder ports.Embedder, concurrency int) *ChromemSelector {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ChromemSelector{embed: EmbeddingFunc(embedder), concurrency: concurrency}
}

// SelectTopExcerpts returns up to count chunks, most similar first.
func (s *ChromemSelector) SelectTopExcerpts(ctx context.Context, chunks []string, target []float32, count int) ([]string, error) {
	if count <= 0 || len(chunks) == 0 {
		return nil, nil
	}

	index, err := s.Index(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return index.Top(ctx, target, count)
}

// Index embeds chunks into a throwaway collection that can be queried many times.
func (s *ChromemSelector) Index(ctx context.Context, chunks []string) (ports.ExcerptIndex, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("excerpts-"+uuid.NewString(), nil, s.embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	if len(chunks) > 0 {
		docs := make([]chromem.Document, 0, len(chunks))
		for i, chunk := range chunks {
			docs = append(docs, chromem.Document{ID: strconv.Itoa(i), Content: chunk})
		}
		if err := collection.AddDocuments(ctx, docs, s.concurrency); err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
	}
	return &chromemIndex{collection: collection}, nil
}

type chromemIndex struct {
	collection *chromem.Collection
}

// Top returns up to count indexed chunks, most similar to target first.
func (i *chromemIndex) Top(ctx context.Context, target []float32, count int) ([]string, error) {
	n := count
	if c := i.collection.Count(); n > c {
		n = c
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := i.collection.QueryEmbedding(ctx, target, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}

	picked := make([]string, 0, len(results))
	for _, r := range results {
		picked = append(picked, r.Content)
	}
	return picked, nil
}

// EmbeddingFunc adapts a ports.Embedder to chromem.
func EmbeddingFunc(embedder ports.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
}

// OpenAIEmbedder implements ports.Embedder with chromem's OpenAI embedding function.
type OpenAIEmbedder struct {
	embed chromem.EmbeddingFunc
}

var _ ports.Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder uses the text-embedding-3-small model.
func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{embed: chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small)}
}

// Embed implements ports.Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	return vec, nil
}
