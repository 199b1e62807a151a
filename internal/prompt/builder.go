package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bidgen/internal/config"
	"bidgen/internal/logger"
	"bidgen/internal/retrieval"
	"bidgen/internal/strategy"
	"bidgen/internal/template"
)

// Context carries everything the builder needs to assemble prompts for one
// section.
type Context struct {
	DocumentType string
	SectionTitle string
	SectionLevel int
	ProjectInfo  map[string]string
	Requirements map[string]string
	Strategy     string
	Retrieval    *retrieval.Result
}

// Output is the assembled prompt bundle handed to the content generator.
type Output struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Builder renders the document-type template pair and resolves sampling
// parameters. Each Build call is a pure function of its inputs and the
// injected configuration.
type Builder struct {
	engine   *template.Engine
	registry *strategy.Registry
	cfg      *config.Pipeline
	log      *logger.Logger
}

func NewBuilder(engine *template.Engine, registry *strategy.Registry, cfg *config.Pipeline, log *logger.Logger) *Builder {
	return &Builder{
		engine:   engine,
		registry: registry,
		cfg:      cfg,
		log:      log.With("component", "prompt"),
	}
}

// Build assembles the system/user prompt pair for a section. Degraded
// retrieval still yields a valid prompt; the only error is the fatal
// configuration case of an unknown document type.
func (b *Builder) Build(pc Context) (Output, error) {
	dt, err := b.cfg.DocType(pc.DocumentType)
	if err != nil {
		return Output{}, fmt.Errorf("build prompt for %q: %w", pc.SectionTitle, err)
	}

	vars := b.variables(pc)
	out := Output{
		SystemPrompt: b.engine.Render(dt.SystemTemplate, vars),
		UserPrompt:   b.engine.Render(dt.UserTemplate, vars),
	}
	out.Temperature, out.MaxTokens = b.sampling(pc, dt)
	return out, nil
}

// sampling resolves temperature and max tokens with the precedence
// generation strategy, then document-type config, then global default.
func (b *Builder) sampling(pc Context, dt config.DocumentType) (float64, int) {
	gen := b.registry.Generation(pc.Strategy)

	temperature := b.cfg.DefaultTemperature
	if dt.Temperature != nil {
		temperature = *dt.Temperature
	}
	if t, ok := gen.Temperature(pc.DocumentType, pc.SectionLevel); ok {
		temperature = t
	}

	maxTokens := b.cfg.DefaultMaxTokens
	if dt.MaxTokens != nil {
		maxTokens = *dt.MaxTokens
	}
	if n, ok := gen.MaxTokens(pc.DocumentType, pc.SectionLevel); ok {
		maxTokens = n
	}
	return temperature, maxTokens
}

func (b *Builder) variables(pc Context) map[string]string {
	vars := map[string]string{
		"document_type": pc.DocumentType,
		"section_title": pc.SectionTitle,
		"section_level": strconv.Itoa(pc.SectionLevel),
		"project_name":  pc.ProjectInfo["project_name"],
		"industry":      pc.ProjectInfo["industry"],
		"customer":      pc.ProjectInfo["customer"],
		"requirements":  formatRequirements(pc.Requirements),
	}
	if minWords := b.cfg.MinWords(pc.DocumentType, pc.SectionLevel); minWords > 0 {
		vars["min_words"] = strconv.Itoa(minWords)
	}
	if pc.Retrieval != nil && len(pc.Retrieval.Fragments) > 0 {
		vars["has_references"] = "true"
		vars["references"] = FormatFragments(pc.Retrieval.Fragments)
	}
	return vars
}

// formatRequirements renders the requirement mapping as stable bullet
// lines. Map iteration order would otherwise leak into the prompt text.
func formatRequirements(reqs map[string]string) string {
	if len(reqs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(reqs))
	for k := range reqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s：%s", k, reqs[k]))
	}
	return strings.Join(lines, "\n")
}
