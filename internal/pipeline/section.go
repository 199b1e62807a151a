package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bidgen/internal/config"
	"bidgen/internal/generation"
	"bidgen/internal/logger"
	"bidgen/internal/monitoring"
	"bidgen/internal/prompt"
	"bidgen/internal/quality"
	"bidgen/internal/retrieval"
)

// Section is one outline entry of the document being generated.
type Section struct {
	Title string
	Level int
}

// Request describes a document generation run.
type Request struct {
	KnowledgeBaseID string
	DocumentType    string
	Strategy        string
	TopK            int
	ProjectInfo     map[string]string
	Requirements    map[string]string
	Sections        []Section
}

// SectionResult bundles the per-stage outputs for one section.
type SectionResult struct {
	Section    Section
	Retrieval  retrieval.Result
	Generation generation.Result
	Metrics    quality.Metrics
}

// Pipeline runs the retrieve, build, generate, assess chain for single
// sections. It is safe for concurrent use; all state is injected
// configuration and stateless collaborators.
type Pipeline struct {
	retriever *retrieval.Retriever
	builder   *prompt.Builder
	generator *generation.Generator
	assessor  *quality.Assessor
	cfg       *config.Pipeline
	sink      monitoring.Sink
	log       *logger.Logger
}

func New(
	retriever *retrieval.Retriever,
	builder *prompt.Builder,
	generator *generation.Generator,
	assessor *quality.Assessor,
	cfg *config.Pipeline,
	sink monitoring.Sink,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		builder:   builder,
		generator: generator,
		assessor:  assessor,
		cfg:       cfg,
		sink:      sink,
		log:       log.With("component", "pipeline"),
	}
}

// RunSection executes the four stages strictly in order and emits one stage
// record per stage plus an audit record on completion.
func (p *Pipeline) RunSection(ctx context.Context, req Request, sec Section) (SectionResult, error) {
	tags := map[string]string{
		"document_type": req.DocumentType,
		"section_title": sec.Title,
		"section_level": strconv.Itoa(sec.Level),
	}

	ret, err := p.retrieveStage(ctx, req, sec, tags)
	if err != nil {
		return SectionResult{}, err
	}
	out, err := p.buildStage(ctx, req, sec, ret, tags)
	if err != nil {
		return SectionResult{}, err
	}
	gen, err := p.generateStage(ctx, req, sec, ret, out, tags)
	if err != nil {
		return SectionResult{}, err
	}
	metrics := p.assessStage(ctx, req, sec, gen, ret, tags)

	res := SectionResult{Section: sec, Retrieval: ret, Generation: gen, Metrics: metrics}
	p.audit(ctx, req, res)
	return res, nil
}

func (p *Pipeline) retrieveStage(ctx context.Context, req Request, sec Section, tags map[string]string) (retrieval.Result, error) {
	done := monitoring.StartStage(p.sink, "pipeline.retrieve", tags)
	defer done(ctx)
	return p.retriever.Retrieve(ctx, retrieval.Context{
		KnowledgeBaseID: req.KnowledgeBaseID,
		SectionTitle:    sec.Title,
		SectionLevel:    sec.Level,
		DocumentType:    req.DocumentType,
		ProjectInfo:     req.ProjectInfo,
		Requirements:    req.Requirements,
	}, req.TopK, req.Strategy)
}

func (p *Pipeline) buildStage(ctx context.Context, req Request, sec Section, ret retrieval.Result, tags map[string]string) (prompt.Output, error) {
	done := monitoring.StartStage(p.sink, "pipeline.build_prompt", tags)
	defer done(ctx)
	return p.builder.Build(prompt.Context{
		DocumentType: req.DocumentType,
		SectionTitle: sec.Title,
		SectionLevel: sec.Level,
		ProjectInfo:  req.ProjectInfo,
		Requirements: req.Requirements,
		Strategy:     req.Strategy,
		Retrieval:    &ret,
	})
}

func (p *Pipeline) generateStage(ctx context.Context, req Request, sec Section, ret retrieval.Result, out prompt.Output, tags map[string]string) (generation.Result, error) {
	done := monitoring.StartStage(p.sink, "pipeline.generate", tags)
	defer done(ctx)
	return p.generator.Generate(ctx, generation.Context{
		DocumentType: req.DocumentType,
		SectionTitle: sec.Title,
		SectionLevel: sec.Level,
		SystemPrompt: out.SystemPrompt,
		UserPrompt:   out.UserPrompt,
		Temperature:  out.Temperature,
		MaxTokens:    out.MaxTokens,
		HasEvidence:  ret.HasRelevant,
	})
}

func (p *Pipeline) assessStage(ctx context.Context, req Request, sec Section, gen generation.Result, ret retrieval.Result, tags map[string]string) quality.Metrics {
	done := monitoring.StartStage(p.sink, "pipeline.assess", tags)
	defer done(ctx)
	return p.assessor.Assess(gen, ret, sec.Level, req.DocumentType)
}

func (p *Pipeline) audit(ctx context.Context, req Request, res SectionResult) {
	if p.sink == nil {
		return
	}
	rec := monitoring.AuditRecord{
		DocumentType: req.DocumentType,
		SectionTitle: res.Section.Title,
		Confidence:   string(res.Generation.Confidence),
		OverallScore: res.Metrics.OverallScore,
		Grade:        res.Metrics.Grade,
		CreatedAt:    time.Now().UTC(),
		Detail: map[string]any{
			"section_level":      res.Section.Level,
			"strategy":           res.Retrieval.Strategy,
			"fragments":          len(res.Retrieval.Fragments),
			"retrieval_quality":  res.Retrieval.QualityScore,
			"has_relevant":       res.Retrieval.HasRelevant,
			"word_count":         res.Generation.WordCount,
			"has_placeholder":    res.Generation.HasPlaceholder,
			"format_type":        string(res.Generation.FormatType),
			"completeness_score": res.Metrics.CompletenessScore,
			"evidence_score":     res.Metrics.EvidenceScore,
			"format_score":       res.Metrics.FormatScore,
			"issues":             res.Metrics.Issues,
		},
	}
	if err := p.sink.RecordAudit(ctx, rec); err != nil {
		p.log.Warn("audit record dropped", "section", res.Section.Title, "error", err)
	}
}

// String implements a compact description used in run summaries.
func (s Section) String() string {
	return fmt.Sprintf("L%d %s", s.Level, s.Title)
}
