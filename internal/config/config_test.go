package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bidgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestGetDottedKeys(t *testing.T) {
	path := writeConfig(t, `
global:
  default_temperature: 0.5
  default_max_tokens: 2048
retrieval:
  default_top_k: 8
`)
	p, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, p.GetFloat("global.default_temperature", 0.7))
	assert.Equal(t, 2048, p.GetInt("global.default_max_tokens", 3000))
	assert.Equal(t, 8, p.GetInt("retrieval.default_top_k", 5))
	assert.Equal(t, "fallback", p.GetString("retrieval.missing", "fallback"))
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := writeConfig(t, "global:\n  default_concurrency: 2\n")
	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.GetInt("global.default_concurrency", 4))

	require.NoError(t, os.WriteFile(path, []byte("global:\n  default_concurrency: 6\n"), 0o644))
	require.NoError(t, p.Reload())
	assert.Equal(t, 6, p.GetInt("global.default_concurrency", 4))
}

func TestPipelineFromProviderOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
global:
  default_temperature: 0.3
retrieval:
  quality_threshold: 0.7
document_types:
  tender:
    templates:
      system: tender_system
      user: tender_user
    llm:
      temperature: 0.4
      max_tokens: 4096
    min_words:
      level_1: 1000
      level_2: 600
`)
	p, err := LoadFile(path)
	require.NoError(t, err)

	cfg, err := PipelineFromProvider(p)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.DefaultTemperature)
	assert.Equal(t, 0.7, cfg.QualityThreshold)
	assert.Equal(t, 1000, cfg.MinWords("tender", 1))
	assert.Equal(t, 600, cfg.MinWords("tender", 2))
	// Unconfigured deeper level inherits the nearest shallower bound.
	assert.Equal(t, 600, cfg.MinWords("tender", 4))

	temp, maxTokens := cfg.Sampling("tender")
	assert.Equal(t, 0.4, temp)
	assert.Equal(t, 4096, maxTokens)

	// Declare keeps the packaged defaults.
	temp, maxTokens = cfg.Sampling("declare")
	assert.Equal(t, 0.3, temp)
	assert.Equal(t, 3000, maxTokens)
}

func TestGradeBandsPartitionUnitInterval(t *testing.T) {
	cfg := DefaultPipeline()
	require.NoError(t, cfg.Validate())

	// Every score in [0,1] maps to exactly one label.
	for score := 0.0; score <= 1.0; score += 0.01 {
		label := cfg.Grade(score)
		assert.NotEmpty(t, label, "score %v", score)
	}
	assert.Equal(t, "excellent", cfg.Grade(1.0))
	assert.Equal(t, "excellent", cfg.Grade(0.85))
	assert.Equal(t, "good", cfg.Grade(0.8499))
	assert.Equal(t, "fair", cfg.Grade(0.5))
	assert.Equal(t, "poor", cfg.Grade(0))
}

func TestGradeBandValidationRejectsGaps(t *testing.T) {
	cfg := DefaultPipeline()
	cfg.Grades = []GradeBand{{Min: 0.8, Label: "good"}, {Min: 0.4, Label: "poor"}}
	assert.Error(t, cfg.Validate(), "bands not reaching 0 leave a gap")

	cfg.Grades = []GradeBand{{Min: 0.5, Label: "a"}, {Min: 0.5, Label: "b"}, {Min: 0, Label: "c"}}
	assert.Error(t, cfg.Validate(), "equal cut points overlap")
}

func TestMinWordsIsNonIncreasingByLevel(t *testing.T) {
	cfg := DefaultPipeline()
	prev := cfg.MinWords("tender", 1)
	for level := 2; level <= 6; level++ {
		cur := cfg.MinWords("tender", level)
		assert.LessOrEqual(t, cur, prev, "level %d", level)
		prev = cur
	}
}
