package retrieval

// Context describes the section a retrieval run serves. Constructed once
// per section and never mutated.
type Context struct {
	KnowledgeBaseID string
	SectionTitle    string
	SectionLevel    int
	DocumentType    string
	ProjectInfo     map[string]string
	Requirements    map[string]string
}

// DocumentFragment is one piece of evidence. Downstream stages reference
// fragments by ID; only quoted excerpts of Text reach the prompt.
type DocumentFragment struct {
	ID          string
	Text        string
	Relevance   float64
	SourceDocID string
}

// Result is the outcome of a retrieval run. Fragments are ordered by
// relevance descending. HasRelevant holds exactly when the quality score
// reaches the configured threshold and at least one fragment was found.
type Result struct {
	Fragments    []DocumentFragment
	QualityScore float64
	HasRelevant  bool
	Strategy     string
}

// EvidenceCount returns the number of distinct fragment IDs.
func (r Result) EvidenceCount() int {
	seen := map[string]bool{}
	for _, f := range r.Fragments {
		if f.ID != "" {
			seen[f.ID] = true
		}
	}
	return len(seen)
}
