package quality

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"bidgen/internal/generation"
)

var markdownParser = goldmark.New()

// scoreFormat grades markup quality in [0,1]: 1 for well-formed content in
// the expected format, partial credit for a format mismatch or broken
// markup, 0 for empty output.
func scoreFormat(content string, detected generation.Format, expected string) float64 {
	if strings.TrimSpace(content) == "" {
		return 0
	}

	wellFormed := true
	switch detected {
	case generation.FormatHTML:
		wellFormed = htmlBalanced(content)
	default:
		wellFormed = markdownWellFormed(content)
	}

	matches := expected == "" || string(detected) == expected
	switch {
	case matches && wellFormed:
		return 1
	case matches:
		return 0.5
	case wellFormed:
		return 0.3
	default:
		return 0.1
	}
}

// markdownWellFormed requires balanced code fences and a parseable document.
func markdownWellFormed(content string) bool {
	if strings.Count(content, "```")%2 != 0 {
		return false
	}
	root := markdownParser.Parser().Parse(text.NewReader([]byte(content)))
	return root != nil && root.HasChildren()
}

var htmlTagToken = regexp.MustCompile(`(?i)<(/?)([a-z][a-z0-9]*)[^>]*?(/?)>`)

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true, "link": true,
}

// htmlBalanced checks that every opened tag is closed in order. Stray
// closing tags or leftovers on the stack count as broken markup.
func htmlBalanced(content string) bool {
	var stack []string
	for _, m := range htmlTagToken.FindAllStringSubmatch(content, -1) {
		closing, tag, selfClosed := m[1] == "/", strings.ToLower(m[2]), m[3] == "/"
		if voidTags[tag] || selfClosed {
			continue
		}
		if closing {
			if len(stack) == 0 || stack[len(stack)-1] != tag {
				return false
			}
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, tag)
	}
	return len(stack) == 0
}
