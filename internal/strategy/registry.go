package strategy

import (
	"sort"
	"strings"
	"sync"
)

// Registry holds named retrieval and generation strategies. Lookups for an
// unknown name resolve to the builtin "auto" strategy rather than erroring.
// Registration overwrites silently (last write wins) so strategies can be
// hot-reloaded.
type Registry struct {
	mu         sync.RWMutex
	retrieval  map[string]Retrieval
	generation map[string]Generation
}

// NewRegistry returns a registry pre-populated with the builtin strategies:
// auto, tender and declare.
func NewRegistry() *Registry {
	r := &Registry{
		retrieval:  map[string]Retrieval{},
		generation: map[string]Generation{},
	}
	r.RegisterRetrieval(AutoName, autoStrategy{})
	r.RegisterGeneration(AutoName, autoStrategy{})
	r.RegisterRetrieval("tender", tenderStrategy{})
	r.RegisterGeneration("tender", tenderStrategy{})
	r.RegisterRetrieval("declare", declareStrategy{})
	r.RegisterGeneration("declare", declareStrategy{})
	return r
}

func (r *Registry) RegisterRetrieval(name string, s Retrieval) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retrieval[normalizeName(name)] = s
}

func (r *Registry) RegisterGeneration(name string, s Generation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation[normalizeName(name)] = s
}

// Retrieval resolves a retrieval strategy by name, falling back to auto.
func (r *Registry) Retrieval(name string) Retrieval {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.retrieval[normalizeName(name)]; ok {
		return s
	}
	return r.retrieval[AutoName]
}

// Generation resolves a generation strategy by name, falling back to auto.
func (r *Registry) Generation(name string) Generation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.generation[normalizeName(name)]; ok {
		return s
	}
	return r.generation[AutoName]
}

// Names lists the registered retrieval strategy names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.retrieval))
	for name := range r.retrieval {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return AutoName
	}
	return n
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry. Components should prefer an
// injected registry; this accessor wraps a single shared instance for
// callers that want the convenience.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
