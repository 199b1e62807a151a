package template

import (
	"os"
	"path/filepath"
	"sync"

	"bidgen/internal/logger"
)

// PromptLoader supplies operator-edited prompt text by template name. A
// returned false means no active override exists and the engine moves on to
// the filesystem and packaged sources.
type PromptLoader interface {
	ActivePrompt(name string) (string, bool)
}

// Engine resolves template names to sources and renders them. Lookup order:
// prompt loader override, override directory file, packaged default. Any
// miss or parse error degrades to the hardcoded fallback prompt; Render
// itself never fails.
type Engine struct {
	loader      PromptLoader
	overrideDir string
	log         *logger.Logger

	mu    sync.Mutex
	cache map[string]*Template

	fallback *Template
}

func NewEngine(loader PromptLoader, overrideDir string, log *logger.Logger) *Engine {
	fallback, err := Parse(fallbackPrompt)
	if err != nil {
		// The fallback source is a package constant; a parse failure here
		// is a programming error, not a runtime condition.
		panic("template: fallback prompt does not parse: " + err.Error())
	}
	return &Engine{
		loader:      loader,
		overrideDir: overrideDir,
		log:         log.With("component", "template"),
		cache:       map[string]*Template{},
		fallback:    fallback,
	}
}

// Render resolves and evaluates the named template against vars. Missing
// templates and parse errors are logged and answered with the fallback
// prompt so the caller always receives usable text.
func (e *Engine) Render(name string, vars map[string]string) string {
	source, ok := e.source(name)
	if !ok {
		e.log.Warn("template missing, using fallback prompt", "template", name)
		return e.fallback.Render(vars)
	}
	tmpl, err := e.parsed(source)
	if err != nil {
		e.log.Warn("template does not parse, using fallback prompt",
			"template", name, "error", err)
		return e.fallback.Render(vars)
	}
	return tmpl.Render(vars)
}

// source resolves the template text. Operator-activated prompts win over
// files, files over packaged defaults, selected strictly by name.
func (e *Engine) source(name string) (string, bool) {
	if e.loader != nil {
		if text, ok := e.loader.ActivePrompt(name); ok {
			return text, true
		}
	}
	if e.overrideDir != "" {
		path := filepath.Join(e.overrideDir, name+".md")
		if data, err := os.ReadFile(path); err == nil {
			return string(data), true
		}
	}
	return DefaultSource(name)
}

// parsed returns the cached parse of a source text. The cache is keyed by
// source so an operator-edited prompt takes effect as soon as the loader
// starts returning the new text.
func (e *Engine) parsed(source string) (*Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[source]; ok {
		return tmpl, nil
	}
	tmpl, err := Parse(source)
	if err != nil {
		return nil, err
	}
	e.cache[source] = tmpl
	return tmpl, nil
}
