package prompt

import (
	"fmt"
	"strings"

	"bidgen/internal/retrieval"
)

// excerptRunes caps how much of a fragment reaches the prompt. Whole chunks
// would crowd out the instructions for long source documents.
const excerptRunes = 400

// FormatFragments flattens retrieval fragments into quoted, attributed
// excerpts ready for template substitution.
func FormatFragments(fragments []retrieval.DocumentFragment) string {
	if len(fragments) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, f := range fragments {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "【资料%d】", i+1)
		if f.SourceDocID != "" {
			fmt.Fprintf(&sb, "（来源：%s，相关度 %.2f）", f.SourceDocID, f.Relevance)
		} else {
			fmt.Fprintf(&sb, "（相关度 %.2f）", f.Relevance)
		}
		sb.WriteString("\n“")
		sb.WriteString(excerpt(f.Text))
		sb.WriteString("”")
	}
	return sb.String()
}

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes]) + "……"
}
