package retrieval

import (
	"context"
	"fmt"
	"sort"

	"bidgen/internal/config"
	"bidgen/internal/knowledge"
	"bidgen/internal/logger"
	"bidgen/internal/strategy"
)

// Retriever finds evidence fragments for a section and judges whether they
// amount to enough material to ground a generation.
type Retriever struct {
	store    knowledge.SearchStore
	registry *strategy.Registry
	cfg      *config.Pipeline
	log      *logger.Logger
}

func NewRetriever(store knowledge.SearchStore, registry *strategy.Registry, cfg *config.Pipeline, log *logger.Logger) *Retriever {
	return &Retriever{
		store:    store,
		registry: registry,
		cfg:      cfg,
		log:      log.With("component", "retriever"),
	}
}

// Retrieve runs a similarity search for the section and scores the result.
// A missing knowledge base or an empty hit list is a degraded condition,
// not an error: the result carries QualityScore 0 and HasRelevant false.
// Store transport failures are returned to the caller untouched.
func (r *Retriever) Retrieve(ctx context.Context, rc Context, topK int, strategyName string) (Result, error) {
	if topK <= 0 {
		topK = r.cfg.DefaultTopK
	}
	strat := r.registry.Retrieval(strategyName)
	result := Result{Strategy: strategyName}
	if result.Strategy == "" {
		result.Strategy = strategy.AutoName
	}

	if rc.KnowledgeBaseID == "" {
		r.log.Warn("no knowledge base for section", "section", rc.SectionTitle)
		return result, nil
	}

	query := strat.BuildQuery(rc.SectionTitle, strategy.QueryContext{
		DocumentType: rc.DocumentType,
		SectionLevel: rc.SectionLevel,
		ProjectInfo:  rc.ProjectInfo,
		Requirements: rc.Requirements,
	})
	filters := strat.DocTypeFilters(rc.DocumentType)

	chunks, err := r.store.Search(ctx, rc.KnowledgeBaseID, query, filters, topK)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve evidence for %q: %w", rc.SectionTitle, err)
	}

	fragments := make([]DocumentFragment, 0, len(chunks))
	for _, c := range chunks {
		fragments = append(fragments, DocumentFragment{
			ID:          c.ID,
			Text:        c.Text,
			Relevance:   c.Relevance,
			SourceDocID: c.SourceDocID,
		})
	}
	sort.SliceStable(fragments, func(i, j int) bool {
		if fragments[i].Relevance == fragments[j].Relevance {
			return fragments[i].ID < fragments[j].ID
		}
		return fragments[i].Relevance > fragments[j].Relevance
	})

	result.Fragments = fragments
	result.QualityScore = scoreQuality(fragments, topK, rc.SectionLevel)
	result.HasRelevant = result.QualityScore >= r.cfg.QualityThreshold && len(fragments) > 0

	r.log.Debug("retrieval scored",
		"section", rc.SectionTitle,
		"fragments", len(fragments),
		"quality_score", result.QualityScore,
		"has_relevant", result.HasRelevant,
	)
	return result, nil
}
