package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownDocumentType marks a fatal configuration gap: a request named a
// document type the pipeline configuration does not carry.
var ErrUnknownDocumentType = errors.New("unknown document type")

// Pipeline is the typed configuration view the scoring and prompt code works
// against. It is loaded once per pipeline run; components receive it by
// reference and never mutate it.
type Pipeline struct {
	DefaultTemperature float64
	DefaultMaxTokens   int
	DefaultConcurrency int

	DefaultTopK      int
	QualityThreshold float64

	EvidenceTarget int
	Weights        ScoreWeights
	Issue          IssueThresholds
	Grades         []GradeBand

	DocumentTypes map[string]DocumentType
}

// ScoreWeights combines the three quality sub-scores into the overall score.
type ScoreWeights struct {
	Completeness float64
	Evidence     float64
	Format       float64
}

// IssueThresholds are the per-sub-score floors below which an issue entry is
// recorded.
type IssueThresholds struct {
	Completeness float64
	Evidence     float64
	Format       float64
}

// GradeBand maps a minimum overall score to a grade label. Bands are kept
// sorted by Min descending and must partition [0,1].
type GradeBand struct {
	Min   float64
	Label string
}

// DocumentType holds per-document-type prompt and sampling settings.
type DocumentType struct {
	SystemTemplate string
	UserTemplate   string
	ExpectedFormat string
	Temperature    *float64
	MaxTokens      *int
	MinWords       map[int]int
}

var defaultMinWords = map[int]int{1: 800, 2: 500, 3: 300, 4: 150}

// DefaultPipeline returns the built-in configuration used when no file is
// present. Both tender and declare document types are pre-wired to the
// packaged templates.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		DefaultTemperature: 0.7,
		DefaultMaxTokens:   3000,
		DefaultConcurrency: 4,
		DefaultTopK:        5,
		QualityThreshold:   0.6,
		EvidenceTarget:     3,
		Weights:            ScoreWeights{Completeness: 0.4, Evidence: 0.3, Format: 0.3},
		Issue:              IssueThresholds{Completeness: 0.6, Evidence: 0.5, Format: 0.8},
		Grades: []GradeBand{
			{Min: 0.85, Label: "excellent"},
			{Min: 0.70, Label: "good"},
			{Min: 0.50, Label: "fair"},
			{Min: 0, Label: "poor"},
		},
		DocumentTypes: map[string]DocumentType{
			"tender": {
				SystemTemplate: "tender_system",
				UserTemplate:   "tender_user",
				ExpectedFormat: "markdown",
				MinWords:       defaultMinWords,
			},
			"declare": {
				SystemTemplate: "declare_system",
				UserTemplate:   "declare_user",
				ExpectedFormat: "markdown",
				MinWords:       defaultMinWords,
			},
		},
	}
}

// PipelineFromProvider overlays provider values onto the defaults and
// validates the result.
func PipelineFromProvider(p *Provider) (*Pipeline, error) {
	cfg := DefaultPipeline()
	if p == nil {
		return cfg, nil
	}

	cfg.DefaultTemperature = p.GetFloat("global.default_temperature", cfg.DefaultTemperature)
	cfg.DefaultMaxTokens = p.GetInt("global.default_max_tokens", cfg.DefaultMaxTokens)
	cfg.DefaultConcurrency = p.GetInt("global.default_concurrency", cfg.DefaultConcurrency)
	cfg.DefaultTopK = p.GetInt("retrieval.default_top_k", cfg.DefaultTopK)
	cfg.QualityThreshold = p.GetFloat("retrieval.quality_threshold", cfg.QualityThreshold)
	cfg.EvidenceTarget = p.GetInt("quality.evidence_target", cfg.EvidenceTarget)
	cfg.Weights.Completeness = p.GetFloat("quality.weights.completeness", cfg.Weights.Completeness)
	cfg.Weights.Evidence = p.GetFloat("quality.weights.evidence", cfg.Weights.Evidence)
	cfg.Weights.Format = p.GetFloat("quality.weights.format", cfg.Weights.Format)
	cfg.Issue.Completeness = p.GetFloat("quality.issue_thresholds.completeness", cfg.Issue.Completeness)
	cfg.Issue.Evidence = p.GetFloat("quality.issue_thresholds.evidence", cfg.Issue.Evidence)
	cfg.Issue.Format = p.GetFloat("quality.issue_thresholds.format", cfg.Issue.Format)

	if bands, ok := p.Get("quality.grades", nil).([]any); ok {
		parsed, err := parseGradeBands(bands)
		if err != nil {
			return nil, err
		}
		cfg.Grades = parsed
	}

	if types := p.Sub("document_types"); types != nil {
		for name, raw := range types {
			dt, err := parseDocumentType(name, raw, cfg.DocumentTypes[name])
			if err != nil {
				return nil, err
			}
			cfg.DocumentTypes[name] = dt
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants scoring relies on: positive budgets,
// weights that sum to something normalizable, and grade bands that cover
// [0,1] monotonically with no gaps.
func (c *Pipeline) Validate() error {
	if c.DefaultMaxTokens <= 0 {
		return fmt.Errorf("global.default_max_tokens must be positive")
	}
	if c.DefaultConcurrency <= 0 {
		return fmt.Errorf("global.default_concurrency must be positive")
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("retrieval.default_top_k must be positive")
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 1 {
		return fmt.Errorf("retrieval.quality_threshold must be within [0,1]")
	}
	if c.EvidenceTarget <= 0 {
		return fmt.Errorf("quality.evidence_target must be positive")
	}
	if c.Weights.Completeness+c.Weights.Evidence+c.Weights.Format <= 0 {
		return fmt.Errorf("quality.weights must not all be zero")
	}
	if len(c.Grades) == 0 {
		return fmt.Errorf("quality.grades must not be empty")
	}
	sort.SliceStable(c.Grades, func(i, j int) bool { return c.Grades[i].Min > c.Grades[j].Min })
	for i, band := range c.Grades {
		if strings.TrimSpace(band.Label) == "" {
			return fmt.Errorf("quality.grades[%d] has an empty label", i)
		}
		if band.Min < 0 || band.Min > 1 {
			return fmt.Errorf("quality.grades[%d] min %v outside [0,1]", i, band.Min)
		}
		if i > 0 && band.Min >= c.Grades[i-1].Min {
			return fmt.Errorf("quality.grades must have strictly decreasing cut points")
		}
	}
	if c.Grades[len(c.Grades)-1].Min != 0 {
		return fmt.Errorf("quality.grades must cover scores down to 0")
	}
	return nil
}

// Grade buckets an overall score into the configured label set. Bands
// partition [0,1], so every score maps to exactly one label.
func (c *Pipeline) Grade(score float64) string {
	for _, band := range c.Grades {
		if score >= band.Min {
			return band.Label
		}
	}
	return c.Grades[len(c.Grades)-1].Label
}

// MinWords returns the minimum word count expected for a section at the
// given level. Deeper levels never require more words than shallower ones;
// an unconfigured level inherits from the nearest shallower configured one.
func (c *Pipeline) MinWords(docType string, level int) int {
	if level < 1 {
		level = 1
	}
	table := defaultMinWords
	if dt, ok := c.DocumentTypes[docType]; ok && len(dt.MinWords) > 0 {
		table = dt.MinWords
	}
	for l := level; l >= 1; l-- {
		if n, ok := table[l]; ok {
			return n
		}
	}
	if n, ok := defaultMinWords[level]; ok {
		return n
	}
	return defaultMinWords[4]
}

// DocType looks up the settings for a document type.
func (c *Pipeline) DocType(name string) (DocumentType, error) {
	dt, ok := c.DocumentTypes[name]
	if !ok {
		return DocumentType{}, fmt.Errorf("%w: %q", ErrUnknownDocumentType, name)
	}
	return dt, nil
}

// Sampling resolves the document-type temperature and max-token values,
// falling back to the globals when the type carries no override.
func (c *Pipeline) Sampling(docType string) (float64, int) {
	temp := c.DefaultTemperature
	maxTokens := c.DefaultMaxTokens
	if dt, ok := c.DocumentTypes[docType]; ok {
		if dt.Temperature != nil {
			temp = *dt.Temperature
		}
		if dt.MaxTokens != nil {
			maxTokens = *dt.MaxTokens
		}
	}
	return temp, maxTokens
}

func parseGradeBands(raw []any) ([]GradeBand, error) {
	bands := make([]GradeBand, 0, len(raw))
	for i, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("quality.grades[%d] must be a mapping", i)
		}
		band := GradeBand{}
		switch v := m["min"].(type) {
		case float64:
			band.Min = v
		case int:
			band.Min = float64(v)
		default:
			return nil, fmt.Errorf("quality.grades[%d] is missing a numeric min", i)
		}
		band.Label, _ = m["label"].(string)
		bands = append(bands, band)
	}
	return bands, nil
}

func parseDocumentType(name string, raw any, base DocumentType) (DocumentType, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return base, fmt.Errorf("document_types.%s must be a mapping", name)
	}
	dt := base
	if dt.ExpectedFormat == "" {
		dt.ExpectedFormat = "markdown"
	}

	if templates, ok := m["templates"].(map[string]any); ok {
		if v, ok := templates["system"].(string); ok && v != "" {
			dt.SystemTemplate = v
		}
		if v, ok := templates["user"].(string); ok && v != "" {
			dt.UserTemplate = v
		}
	}
	if v, ok := m["expected_format"].(string); ok && v != "" {
		dt.ExpectedFormat = v
	}
	if llm, ok := m["llm"].(map[string]any); ok {
		if t, ok := toFloat(llm["temperature"]); ok {
			dt.Temperature = &t
		}
		if n, ok := toInt(llm["max_tokens"]); ok {
			dt.MaxTokens = &n
		}
	}
	if words, ok := m["min_words"].(map[string]any); ok {
		table := map[int]int{}
		for key, v := range words {
			level, err := parseLevelKey(key)
			if err != nil {
				return dt, fmt.Errorf("document_types.%s.min_words: %w", name, err)
			}
			n, ok := toInt(v)
			if !ok || n < 0 {
				return dt, fmt.Errorf("document_types.%s.min_words.%s must be a non-negative integer", name, key)
			}
			table[level] = n
		}
		if len(table) > 0 {
			dt.MinWords = table
		}
	}

	if dt.SystemTemplate == "" || dt.UserTemplate == "" {
		return dt, fmt.Errorf("document_types.%s must name system and user templates", name)
	}
	return dt, nil
}

// parseLevelKey accepts "level_3" or a bare number.
func parseLevelKey(key string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(key), "level_")
	level, err := strconv.Atoi(trimmed)
	if err != nil || level < 1 || level > 6 {
		return 0, fmt.Errorf("invalid level key %q", key)
	}
	return level, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
