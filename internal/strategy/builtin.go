package strategy

import (
	"sort"
	"strings"
)

// AutoName is the default strategy every unknown name resolves to.
const AutoName = "auto"

// autoStrategy is the general-purpose default: query from the section title
// plus the most identifying project fields, no doc-type scoping, and full
// deference to configuration for sampling parameters.
type autoStrategy struct{}

func (autoStrategy) BuildQuery(sectionTitle string, qc QueryContext) string {
	parts := []string{strings.TrimSpace(sectionTitle)}
	for _, key := range []string{"project_name", "industry", "customer"} {
		if v := strings.TrimSpace(qc.ProjectInfo[key]); v != "" {
			parts = append(parts, v)
		}
	}
	parts = append(parts, topRequirementKeys(qc.Requirements, 3)...)
	return strings.Join(compactNonEmpty(parts), " ")
}

func (autoStrategy) DocTypeFilters(docType string) []string {
	return nil
}

func (autoStrategy) Temperature(docType string, sectionLevel int) (float64, bool) {
	return 0, false
}

func (autoStrategy) MaxTokens(docType string, sectionLevel int) (int, bool) {
	return 0, false
}

// tenderStrategy biases retrieval toward bid and solution material and keeps
// sampling conservative for top-level sections, where structure matters more
// than variety.
type tenderStrategy struct {
	autoStrategy
}

func (s tenderStrategy) BuildQuery(sectionTitle string, qc QueryContext) string {
	base := s.autoStrategy.BuildQuery(sectionTitle, qc)
	return strings.TrimSpace(base + " technical solution bid response")
}

func (tenderStrategy) DocTypeFilters(docType string) []string {
	return []string{"tender", "bid", "solution"}
}

func (tenderStrategy) Temperature(docType string, sectionLevel int) (float64, bool) {
	if sectionLevel <= 2 {
		return 0.5, true
	}
	return 0.7, true
}

func (tenderStrategy) MaxTokens(docType string, sectionLevel int) (int, bool) {
	switch {
	case sectionLevel <= 1:
		return 4096, true
	case sectionLevel == 2:
		return 3072, true
	default:
		return 2048, true
	}
}

// declareStrategy targets grant and research declaration material. Lower
// temperature throughout: declarations are audited against their evidence.
type declareStrategy struct {
	autoStrategy
}

func (s declareStrategy) BuildQuery(sectionTitle string, qc QueryContext) string {
	base := s.autoStrategy.BuildQuery(sectionTitle, qc)
	return strings.TrimSpace(base + " research achievement qualification")
}

func (declareStrategy) DocTypeFilters(docType string) []string {
	return []string{"declare", "grant", "research"}
}

func (declareStrategy) Temperature(docType string, sectionLevel int) (float64, bool) {
	return 0.4, true
}

func (declareStrategy) MaxTokens(docType string, sectionLevel int) (int, bool) {
	if sectionLevel <= 1 {
		return 4096, true
	}
	return 2048, true
}

func topRequirementKeys(reqs map[string]string, limit int) []string {
	if len(reqs) == 0 || limit <= 0 {
		return nil
	}
	keys := make([]string, 0, len(reqs))
	for k := range reqs {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func compactNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
