package template

import (
	"fmt"
	"strings"
)

// Template is a parsed prompt template. Parsing happens once; Render walks
// the node tree against a variable mapping and cannot fail.
type Template struct {
	nodes []node
}

type node interface {
	render(sb *strings.Builder, vars map[string]string)
}

// textNode is a literal run of template text.
type textNode string

func (n textNode) render(sb *strings.Builder, _ map[string]string) {
	sb.WriteString(string(n))
}

// varNode substitutes the named variable. Missing variables render empty.
type varNode string

func (n varNode) render(sb *strings.Builder, vars map[string]string) {
	sb.WriteString(vars[string(n)])
}

// ifNode renders its then branch when the condition variable is truthy and
// the else branch otherwise.
type ifNode struct {
	cond string
	then []node
	alt  []node
}

func (n ifNode) render(sb *strings.Builder, vars map[string]string) {
	branch := n.alt
	if truthy(vars[n.cond]) {
		branch = n.then
	}
	for _, child := range branch {
		child.render(sb, vars)
	}
}

// truthy treats a missing or empty variable as false, along with the
// conventional literal spellings of false.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "no":
		return false
	}
	return true
}

// Render evaluates the template against the variable mapping.
func (t *Template) Render(vars map[string]string) string {
	var sb strings.Builder
	for _, n := range t.nodes {
		n.render(&sb, vars)
	}
	return sb.String()
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVar
	tokenIf
	tokenElse
	tokenEndIf
)

type token struct {
	kind  tokenKind
	value string
}

// Parse builds the node tree for a template source. The syntax is
// {{identifier}} for substitution and {{#if identifier}}...{{else}}...{{/if}}
// for conditionals, with the else branch optional.
func Parse(source string) (*Template, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}
	nodes, _, err := parseNodes(tokens, false)
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes}, nil
}

func lex(source string) ([]token, error) {
	var tokens []token
	for len(source) > 0 {
		start := strings.Index(source, openDelim)
		if start < 0 {
			tokens = append(tokens, token{kind: tokenText, value: source})
			break
		}
		if start > 0 {
			tokens = append(tokens, token{kind: tokenText, value: source[:start]})
		}
		rest := source[start+len(openDelim):]
		end := strings.Index(rest, closeDelim)
		if end < 0 {
			return nil, fmt.Errorf("unterminated %q tag", openDelim)
		}
		tag, err := lexTag(strings.TrimSpace(rest[:end]))
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tag)
		source = rest[end+len(closeDelim):]
	}
	return tokens, nil
}

func lexTag(inner string) (token, error) {
	switch {
	case inner == "else":
		return token{kind: tokenElse}, nil
	case inner == "/if":
		return token{kind: tokenEndIf}, nil
	case inner == "#if" || strings.HasPrefix(inner, "#if "):
		cond := strings.TrimSpace(strings.TrimPrefix(inner, "#if"))
		if !validIdentifier(cond) {
			return token{}, fmt.Errorf("invalid condition %q in {{#if}}", cond)
		}
		return token{kind: tokenIf, value: cond}, nil
	default:
		if !validIdentifier(inner) {
			return token{}, fmt.Errorf("invalid substitution %q", inner)
		}
		return token{kind: tokenVar, value: inner}, nil
	}
}

// parseNodes consumes tokens until the list is exhausted or, inside a
// conditional, until the branch terminator. The terminator token is left in
// the returned remainder for the caller.
func parseNodes(tokens []token, insideIf bool) ([]node, []token, error) {
	var nodes []node
	for len(tokens) > 0 {
		tok := tokens[0]
		switch tok.kind {
		case tokenText:
			nodes = append(nodes, textNode(tok.value))
			tokens = tokens[1:]
		case tokenVar:
			nodes = append(nodes, varNode(tok.value))
			tokens = tokens[1:]
		case tokenIf:
			cond := tok.value
			then, rest, err := parseNodes(tokens[1:], true)
			if err != nil {
				return nil, nil, err
			}
			var alt []node
			if len(rest) > 0 && rest[0].kind == tokenElse {
				alt, rest, err = parseNodes(rest[1:], true)
				if err != nil {
					return nil, nil, err
				}
				if len(rest) > 0 && rest[0].kind == tokenElse {
					return nil, nil, fmt.Errorf("duplicate {{else}} in conditional on %q", cond)
				}
			}
			if len(rest) == 0 || rest[0].kind != tokenEndIf {
				return nil, nil, fmt.Errorf("unclosed {{#if %s}}", cond)
			}
			nodes = append(nodes, ifNode{cond: cond, then: then, alt: alt})
			tokens = rest[1:]
		case tokenElse, tokenEndIf:
			if !insideIf {
				if tok.kind == tokenElse {
					return nil, nil, fmt.Errorf("{{else}} outside a conditional block")
				}
				return nil, nil, fmt.Errorf("{{/if}} without a matching {{#if}}")
			}
			return nodes, tokens, nil
		}
	}
	return nodes, nil, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
