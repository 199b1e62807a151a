package generation

import (
	"context"
	"fmt"

	"bidgen/internal/config"
	"bidgen/internal/llm"
	"bidgen/internal/logger"
)

// noEvidenceNote is appended when retrieval found nothing relevant, so the
// gap is visible in the document itself and flags the section for review.
const noEvidenceNote = "\n\n> 待补充：未检索到相关资料，本节内容需人工核实。"

// Generator invokes the LLM orchestrator and normalizes its output into a
// graded result. Each call is a pure function of its inputs; transport
// failures and cancellation propagate instead of being absorbed into a
// low-confidence result.
type Generator struct {
	orch llm.Orchestrator
	cfg  *config.Pipeline
	log  *logger.Logger
}

func NewGenerator(orch llm.Orchestrator, cfg *config.Pipeline, log *logger.Logger) *Generator {
	return &Generator{
		orch: orch,
		cfg:  cfg,
		log:  log.With("component", "generator"),
	}
}

func (g *Generator) Generate(ctx context.Context, gc Context) (Result, error) {
	raw, err := g.orch.Complete(ctx, llm.Request{
		SystemPrompt: gc.SystemPrompt,
		UserPrompt:   gc.UserPrompt,
		Temperature:  gc.Temperature,
		MaxTokens:    gc.MaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("generate section %q: %w", gc.SectionTitle, err)
	}

	content := cleanOutput(raw)
	if content != "" && !gc.HasEvidence {
		content += noEvidenceNote
	}

	res := Result{
		Content:        content,
		RawContent:     raw,
		WordCount:      countWords(content),
		HasPlaceholder: hasPlaceholder(content),
		FormatType:     detectFormat(content),
	}
	res.Confidence = g.confidence(gc, res)

	g.log.Debug("generation normalized",
		"section", gc.SectionTitle,
		"word_count", res.WordCount,
		"confidence", res.Confidence,
		"format", res.FormatType,
	)
	return res, nil
}

// confidence applies the grading rules: placeholders or empty output are
// LOW, meeting the configured minimum length is HIGH, shorter grounded
// output is MEDIUM.
func (g *Generator) confidence(gc Context, res Result) Confidence {
	if res.Content == "" || res.WordCount == 0 || res.HasPlaceholder {
		return ConfidenceLow
	}
	if !gc.HasEvidence {
		return ConfidenceLow
	}
	if res.WordCount >= g.cfg.MinWords(gc.DocumentType, gc.SectionLevel) {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}
