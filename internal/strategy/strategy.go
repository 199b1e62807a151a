package strategy

// QueryContext carries the section surroundings a retrieval strategy may use
// when shaping its search query.
type QueryContext struct {
	DocumentType string
	SectionLevel int
	ProjectInfo  map[string]string
	Requirements map[string]string
}

// Retrieval shapes how evidence is looked up for a section.
type Retrieval interface {
	// BuildQuery derives the knowledge-store query text for a section.
	BuildQuery(sectionTitle string, qc QueryContext) string
	// DocTypeFilters returns payload tags the search should be scoped to.
	// An empty result means no scoping.
	DocTypeFilters(docType string) []string
}

// Generation shapes sampling parameters for a section. Implementations
// return ok=false to defer to document-type or global configuration; a
// returned value takes precedence over both.
type Generation interface {
	Temperature(docType string, sectionLevel int) (float64, bool)
	MaxTokens(docType string, sectionLevel int) (int, bool)
}
