package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// MemoryDoc is one stored fragment in a MemoryStore.
type MemoryDoc struct {
	ID              string
	KnowledgeBaseID string
	Text            string
	DocType         string
	SourceDocID     string
}

// MemoryStore is an in-process SearchStore scoring by token overlap. It
// backs tests and the dry-run mode of the CLI; no network, no embeddings.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []MemoryDoc
}

func NewMemoryStore(docs ...MemoryDoc) *MemoryStore {
	return &MemoryStore{docs: docs}
}

func (m *MemoryStore) Add(docs ...MemoryDoc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
}

func (m *MemoryStore) Search(ctx context.Context, knowledgeBaseID, query string, filters []string, topK int) ([]ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	queryTokens := tokenize(query)
	filterSet := map[string]bool{}
	for _, f := range filters {
		filterSet[strings.ToLower(f)] = true
	}

	var chunks []ScoredChunk
	for _, doc := range m.docs {
		if doc.KnowledgeBaseID != knowledgeBaseID {
			continue
		}
		if len(filterSet) > 0 && !filterSet[strings.ToLower(doc.DocType)] {
			continue
		}
		score := overlapScore(queryTokens, tokenize(doc.Text))
		if score <= 0 {
			continue
		}
		chunks = append(chunks, ScoredChunk{
			ID:          doc.ID,
			Text:        doc.Text,
			Relevance:   score,
			SourceDocID: doc.SourceDocID,
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Relevance == chunks[j].Relevance {
			return chunks[i].ID < chunks[j].ID
		}
		return chunks[i].Relevance > chunks[j].Relevance
	})
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}
	return chunks, nil
}

// tokenize splits into lowercase word tokens, treating each CJK rune as its
// own token so Chinese text matches without segmentation.
func tokenize(text string) map[string]bool {
	out := map[string]bool{}
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			out[strings.ToLower(word.String())] = true
			word.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			out[string(r)] = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}

func overlapScore(query, doc map[string]bool) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	hits := 0
	for token := range query {
		if doc[token] {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
