package knowledge

import (
	"context"
	"errors"
)

// ScoredChunk is one ranked fragment returned by a knowledge store. Text is
// the stored excerpt; Relevance is the store's similarity score in [0,1].
type ScoredChunk struct {
	ID          string
	Text        string
	Relevance   float64
	SourceDocID string
}

// SearchStore is the similarity-search capability the retriever consumes.
// Implementations own embedding; callers pass plain query text.
type SearchStore interface {
	Search(ctx context.Context, knowledgeBaseID, query string, filters []string, topK int) ([]ScoredChunk, error)
}

// Embedder converts text to vectors for stores that need query embeddings.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ErrStoreUnavailable wraps transport failures talking to the knowledge
// store so callers can tell them apart from empty results.
var ErrStoreUnavailable = errors.New("knowledge store unavailable")
