package generation

// Confidence grades how much a generated section can be trusted without
// human review.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Format identifies the markup family of generated content.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Context is the input to one generation call. Prompt arrives fully
// assembled; HasEvidence reflects whether retrieval found relevant material.
type Context struct {
	DocumentType string
	SectionTitle string
	SectionLevel int

	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int

	HasEvidence bool
}

// Result is a normalized generation outcome.
type Result struct {
	Content        string
	RawContent     string
	Confidence     Confidence
	WordCount      int
	HasPlaceholder bool
	FormatType     Format
}
