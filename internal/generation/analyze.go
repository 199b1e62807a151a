package generation

// Analyze normalizes content produced outside this pipeline the same way
// Generate normalizes fresh completions. Confidence stays unset because the
// evidence situation of foreign content is unknown.
func Analyze(content string) Result {
	cleaned := cleanOutput(content)
	return Result{
		Content:        cleaned,
		RawContent:     content,
		WordCount:      countWords(cleaned),
		HasPlaceholder: hasPlaceholder(cleaned),
		FormatType:     detectFormat(cleaned),
	}
}
