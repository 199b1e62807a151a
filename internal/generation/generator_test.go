package generation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidgen/internal/config"
	"bidgen/internal/llm"
	"bidgen/internal/logger"
)

func newTestGenerator(orch llm.Orchestrator) *Generator {
	return NewGenerator(orch, config.DefaultPipeline(), logger.NewNop())
}

func groundedContext(level int) Context {
	return Context{
		DocumentType: "tender",
		SectionTitle: "实施方案",
		SectionLevel: level,
		SystemPrompt: "system",
		UserPrompt:   "user",
		Temperature:  0.7,
		MaxTokens:    2048,
		HasEvidence:  true,
	}
}

func TestGenerateHighConfidenceWhenLongEnough(t *testing.T) {
	mock := &llm.Mock{Response: strings.Repeat("方", 200)}
	res, err := newTestGenerator(mock).Generate(context.Background(), groundedContext(4))
	require.NoError(t, err)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, 200, res.WordCount)
	assert.False(t, res.HasPlaceholder)
}

func TestGenerateMediumConfidenceWhenShortButGrounded(t *testing.T) {
	mock := &llm.Mock{Response: strings.Repeat("方", 60)}
	res, err := newTestGenerator(mock).Generate(context.Background(), groundedContext(4))
	require.NoError(t, err)
	assert.Equal(t, ConfidenceMedium, res.Confidence)
}

func TestGenerateLowConfidenceOnPlaceholder(t *testing.T) {
	mock := &llm.Mock{Response: strings.Repeat("方", 300) + "（具体数据待补充）"}
	res, err := newTestGenerator(mock).Generate(context.Background(), groundedContext(4))
	require.NoError(t, err)
	assert.True(t, res.HasPlaceholder)
	assert.Equal(t, ConfidenceLow, res.Confidence)
}

func TestGenerateWithoutEvidenceAppendsNoteAndGradesLow(t *testing.T) {
	mock := &llm.Mock{Response: strings.Repeat("述", 300)}
	gc := groundedContext(4)
	gc.HasEvidence = false

	res, err := newTestGenerator(mock).Generate(context.Background(), gc)
	require.NoError(t, err)
	assert.Contains(t, res.Content, "待补充")
	assert.True(t, res.HasPlaceholder)
	assert.Equal(t, ConfidenceLow, res.Confidence)
	assert.NotContains(t, res.RawContent, "待补充", "raw output stays untouched")
}

func TestGenerateCancellationIsDistinctOutcome(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestGenerator(&llm.Mock{}).Generate(ctx, groundedContext(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateTransportErrorSurfacesUnretried(t *testing.T) {
	cause := llm.ErrTransport
	mock := &llm.Mock{Err: cause}
	_, err := newTestGenerator(mock).Generate(context.Background(), groundedContext(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrTransport)
	assert.Len(t, mock.Calls(), 1, "exactly one attempt, no retry")
}

func TestGeneratePassesResolvedSampling(t *testing.T) {
	mock := &llm.Mock{Response: "内容"}
	gc := groundedContext(1)
	gc.Temperature = 0.42
	gc.MaxTokens = 777
	_, err := newTestGenerator(mock).Generate(context.Background(), gc)
	require.NoError(t, err)
	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.42, calls[0].Temperature, 1e-9)
	assert.Equal(t, 777, calls[0].MaxTokens)
}

func TestCleanOutputStripsFences(t *testing.T) {
	assert.Equal(t, "# 标题\n\n正文", cleanOutput("```markdown\n# 标题\n\n正文\n```"))
	assert.Equal(t, "# 标题", cleanOutput("```\n# 标题\n```"))
	assert.Equal(t, "普通正文", cleanOutput("  普通正文  "))
}

func TestCountWordsMixedScripts(t *testing.T) {
	assert.Equal(t, 0, countWords(""))
	assert.Equal(t, 4, countWords("智慧园区"))
	assert.Equal(t, 6, countWords("智慧园区 platform 2024"))
	assert.Equal(t, 6, countWords("方案（v2）覆盖 all"))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatMarkdown, detectFormat("# 标题\n\n- 条目"))
	assert.Equal(t, FormatHTML, detectFormat("<p>段落</p><div>内容</div>"))
	assert.Equal(t, FormatMarkdown, detectFormat("纯文本，没有任何标记。"))
}
