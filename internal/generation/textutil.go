package generation

import (
	"regexp"
	"strings"
	"unicode"
)

// placeholderMarkers are the stock phrases models emit when they have
// nothing concrete to say. Their presence caps confidence at LOW.
var placeholderMarkers = []string{
	"待补充",
	"待完善",
	"待填写",
	"[占位]",
	"TBD",
	"TODO",
	"XXX",
}

func hasPlaceholder(text string) bool {
	upper := strings.ToUpper(text)
	for _, marker := range placeholderMarkers {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}

// countWords counts CJK characters individually and latin-script runs as
// single words, matching how length requirements are stated for Chinese
// documents.
func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			count++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				count++
				inWord = true
			}
		default:
			inWord = false
		}
	}
	return count
}

var htmlTagPattern = regexp.MustCompile(`(?i)<(p|div|h[1-6]|ul|ol|li|table|br|span|strong|em)\b[^>]*>`)

// detectFormat classifies content as HTML when tag markers dominate and as
// Markdown otherwise. Markdown is the default for plain prose.
func detectFormat(text string) Format {
	if htmlTagPattern.MatchString(text) && !strings.Contains(text, "```") {
		return FormatHTML
	}
	return FormatMarkdown
}

// cleanOutput strips the code fences models like to wrap whole answers in.
func cleanOutput(text string) string {
	text = strings.TrimSpace(text)
	for _, lang := range []string{"```markdown", "```html", "```"} {
		if strings.HasPrefix(text, lang) && strings.HasSuffix(text, "```") && len(text) > len(lang)+3 {
			text = strings.TrimPrefix(text, lang)
			text = strings.TrimSuffix(text, "```")
			break
		}
	}
	return strings.TrimSpace(text)
}
