package quality

import (
	"bidgen/internal/config"
	"bidgen/internal/generation"
	"bidgen/internal/logger"
	"bidgen/internal/retrieval"
)

// Metrics is the scored verdict on one generated section. OverallScore is a
// deterministic function of the three sub-scores for fixed weights.
type Metrics struct {
	CompletenessScore float64
	EvidenceScore     float64
	FormatScore       float64
	OverallScore      float64
	Grade             string
	Issues            []string
}

// Assessor scores (generation, retrieval) pairs against the configured
// thresholds. Assess holds no state between calls.
type Assessor struct {
	cfg *config.Pipeline
	log *logger.Logger
}

func NewAssessor(cfg *config.Pipeline, log *logger.Logger) *Assessor {
	return &Assessor{cfg: cfg, log: log.With("component", "quality")}
}

func (a *Assessor) Assess(gen generation.Result, ret retrieval.Result, sectionLevel int, docType string) Metrics {
	m := Metrics{
		CompletenessScore: a.completeness(gen.WordCount, docType, sectionLevel),
		EvidenceScore:     a.evidence(ret.EvidenceCount()),
	}

	expected := ""
	if dt, ok := a.cfg.DocumentTypes[docType]; ok {
		expected = dt.ExpectedFormat
	}
	m.FormatScore = scoreFormat(gen.Content, gen.FormatType, expected)

	m.OverallScore = a.overall(m)
	m.Grade = a.cfg.Grade(m.OverallScore)
	m.Issues = a.issues(m, gen)

	a.log.Debug("section assessed",
		"doc_type", docType,
		"level", sectionLevel,
		"overall", m.OverallScore,
		"grade", m.Grade,
		"issues", len(m.Issues),
	)
	return m
}

// completeness is the word count against the per-level minimum, capped at 1.
func (a *Assessor) completeness(wordCount int, docType string, level int) float64 {
	minWords := a.cfg.MinWords(docType, level)
	if minWords <= 0 {
		return 1
	}
	score := float64(wordCount) / float64(minWords)
	if score > 1 {
		return 1
	}
	return score
}

// evidence saturates linearly: 0 with no evidence, 1 once the distinct
// fragment count reaches the configured target.
func (a *Assessor) evidence(distinctFragments int) float64 {
	target := a.cfg.EvidenceTarget
	if target <= 0 {
		target = 1
	}
	score := float64(distinctFragments) / float64(target)
	if score > 1 {
		return 1
	}
	return score
}

func (a *Assessor) overall(m Metrics) float64 {
	w := a.cfg.Weights
	total := w.Completeness + w.Evidence + w.Format
	if total <= 0 {
		return 0
	}
	score := (w.Completeness*m.CompletenessScore + w.Evidence*m.EvidenceScore + w.Format*m.FormatScore) / total
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (a *Assessor) issues(m Metrics, gen generation.Result) []string {
	var issues []string
	if m.CompletenessScore < a.cfg.Issue.Completeness {
		issues = append(issues, "below minimum word count")
	}
	if m.EvidenceScore < a.cfg.Issue.Evidence {
		issues = append(issues, "insufficient evidence")
	}
	if gen.HasPlaceholder {
		issues = append(issues, "placeholder detected")
	}
	if m.FormatScore < a.cfg.Issue.Format {
		issues = append(issues, "format issues detected")
	}
	return issues
}
