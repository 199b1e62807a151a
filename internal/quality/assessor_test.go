package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bidgen/internal/config"
	"bidgen/internal/generation"
	"bidgen/internal/logger"
	"bidgen/internal/retrieval"
)

func newTestAssessor() *Assessor {
	return NewAssessor(config.DefaultPipeline(), logger.NewNop())
}

func fragments(n int) []retrieval.DocumentFragment {
	out := make([]retrieval.DocumentFragment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, retrieval.DocumentFragment{
			ID:        string(rune('a' + i)),
			Relevance: 0.9,
		})
	}
	return out
}

func markdownBody(words int) string {
	return "# 概述\n\n" + strings.Repeat("容", words)
}

func TestAssessFullMarksSection(t *testing.T) {
	gen := generation.Result{
		Content:    markdownBody(1200),
		WordCount:  1200,
		FormatType: generation.FormatMarkdown,
		Confidence: generation.ConfidenceHigh,
	}
	ret := retrieval.Result{Fragments: fragments(3), QualityScore: 0.8, HasRelevant: true}

	m := newTestAssessor().Assess(gen, ret, 1, "tender")
	assert.InDelta(t, 1.0, m.CompletenessScore, 1e-9)
	assert.InDelta(t, 1.0, m.EvidenceScore, 1e-9)
	assert.InDelta(t, 1.0, m.FormatScore, 1e-9)
	assert.InDelta(t, 1.0, m.OverallScore, 1e-9)
	assert.Equal(t, "excellent", m.Grade)
	assert.Empty(t, m.Issues)
}

func TestAssessNoEvidenceRecordsIssue(t *testing.T) {
	gen := generation.Result{
		Content:    markdownBody(900),
		WordCount:  900,
		FormatType: generation.FormatMarkdown,
	}
	m := newTestAssessor().Assess(gen, retrieval.Result{}, 1, "tender")
	assert.Zero(t, m.EvidenceScore)
	assert.Contains(t, m.Issues, "insufficient evidence")
}

func TestAssessShortSectionRecordsIssue(t *testing.T) {
	gen := generation.Result{
		Content:    markdownBody(100),
		WordCount:  100,
		FormatType: generation.FormatMarkdown,
	}
	m := newTestAssessor().Assess(gen, retrieval.Result{Fragments: fragments(3)}, 1, "tender")
	assert.Less(t, m.CompletenessScore, 0.6)
	assert.Contains(t, m.Issues, "below minimum word count")
}

func TestAssessPlaceholderRecordsIssue(t *testing.T) {
	gen := generation.Result{
		Content:        markdownBody(900) + "\n\n待补充",
		WordCount:      903,
		HasPlaceholder: true,
		FormatType:     generation.FormatMarkdown,
	}
	m := newTestAssessor().Assess(gen, retrieval.Result{Fragments: fragments(3)}, 1, "tender")
	assert.Contains(t, m.Issues, "placeholder detected")
}

func TestAssessIdempotent(t *testing.T) {
	gen := generation.Result{
		Content:    markdownBody(400),
		WordCount:  400,
		FormatType: generation.FormatMarkdown,
	}
	ret := retrieval.Result{Fragments: fragments(2)}

	a := newTestAssessor()
	first := a.Assess(gen, ret, 2, "tender")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Assess(gen, ret, 2, "tender"))
	}
}

func TestOverallScoreStaysInUnitInterval(t *testing.T) {
	a := newTestAssessor()
	for wc := 0; wc <= 2000; wc += 250 {
		for ev := 0; ev <= 6; ev++ {
			gen := generation.Result{
				Content:    markdownBody(wc),
				WordCount:  wc,
				FormatType: generation.FormatMarkdown,
			}
			m := a.Assess(gen, retrieval.Result{Fragments: fragments(ev)}, 1, "tender")
			assert.GreaterOrEqual(t, m.OverallScore, 0.0)
			assert.LessOrEqual(t, m.OverallScore, 1.0)
			assert.NotEmpty(t, m.Grade)
		}
	}
}

func TestEvidenceSaturation(t *testing.T) {
	a := newTestAssessor()
	assert.Zero(t, a.evidence(0))
	assert.InDelta(t, 1.0/3.0, a.evidence(1), 1e-9)
	assert.InDelta(t, 1.0, a.evidence(3), 1e-9)
	assert.InDelta(t, 1.0, a.evidence(10), 1e-9, "extra evidence never exceeds the cap")
}

func TestScoreFormatGrading(t *testing.T) {
	assert.Zero(t, scoreFormat("", generation.FormatMarkdown, "markdown"))
	assert.InDelta(t, 1.0,
		scoreFormat("# 标题\n\n正文", generation.FormatMarkdown, "markdown"), 1e-9)
	assert.InDelta(t, 0.5,
		scoreFormat("正文\n```go\n未闭合", generation.FormatMarkdown, "markdown"), 1e-9,
		"unbalanced fence keeps partial credit")
	assert.InDelta(t, 0.3,
		scoreFormat("<p>段落</p>", generation.FormatHTML, "markdown"), 1e-9,
		"well-formed but wrong format")
	assert.InDelta(t, 0.1,
		scoreFormat("<p><div>乱</p></div>", generation.FormatHTML, "markdown"), 1e-9)
}

func TestHTMLBalanced(t *testing.T) {
	assert.True(t, htmlBalanced("<p>a</p><div><span>b</span></div>"))
	assert.True(t, htmlBalanced("<p>换行<br>继续</p>"))
	assert.False(t, htmlBalanced("<div><p>交错</div></p>"))
	assert.False(t, htmlBalanced("<div>未闭合"))
}

func TestGradePartitionMatchesConfig(t *testing.T) {
	cfg := config.DefaultPipeline()
	assert.Equal(t, "excellent", cfg.Grade(0.9))
	assert.Equal(t, "good", cfg.Grade(0.7))
	assert.Equal(t, "fair", cfg.Grade(0.5))
	assert.Equal(t, "poor", cfg.Grade(0.1))
}
