package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidgen/internal/logger"
)

func render(t *testing.T, source string, vars map[string]string) string {
	t.Helper()
	tmpl, err := Parse(source)
	require.NoError(t, err)
	return tmpl.Render(vars)
}

func TestSubstitutionRoundTrip(t *testing.T) {
	source := "章节「{{title}}」属于项目 {{project}}，格式 {{format}}。"
	got := render(t, source, map[string]string{
		"title":   "项目概述",
		"project": "智慧园区平台",
		"format":  "markdown",
	})
	assert.Equal(t, "章节「项目概述」属于项目 智慧园区平台，格式 markdown。", got)
}

func TestMissingVariableRendersEmpty(t *testing.T) {
	got := render(t, "a{{missing}}b", nil)
	assert.Equal(t, "ab", got)
}

func TestConditionalTakesThenBranchWhenTruthy(t *testing.T) {
	source := "{{#if has_refs}}有资料{{else}}无资料{{/if}}"
	assert.Equal(t, "有资料", render(t, source, map[string]string{"has_refs": "true"}))
}

func TestConditionalTakesElseBranchWhenFalsy(t *testing.T) {
	source := "{{#if has_refs}}有资料{{else}}无资料{{/if}}"
	for _, v := range []string{"", "false", "0", "no"} {
		assert.Equal(t, "无资料", render(t, source, map[string]string{"has_refs": v}), "value %q", v)
	}
	assert.Equal(t, "无资料", render(t, source, nil), "missing variable")
}

func TestConditionalElseOptional(t *testing.T) {
	source := "前{{#if flag}}中{{/if}}后"
	assert.Equal(t, "前中后", render(t, source, map[string]string{"flag": "yes"}))
	assert.Equal(t, "前后", render(t, source, nil))
}

func TestNestedConditionals(t *testing.T) {
	source := "{{#if outer}}O{{#if inner}}I{{else}}i{{/if}}{{else}}x{{/if}}"
	assert.Equal(t, "OI", render(t, source, map[string]string{"outer": "1", "inner": "1"}))
	assert.Equal(t, "Oi", render(t, source, map[string]string{"outer": "1"}))
	assert.Equal(t, "x", render(t, source, nil))
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unterminated tag": "text {{title",
		"unclosed if":      "{{#if flag}}body",
		"bare else":        "text {{else}} more",
		"bare endif":       "text {{/if}}",
		"duplicate else":   "{{#if f}}a{{else}}b{{else}}c{{/if}}",
		"empty condition":  "{{#if }}a{{/if}}",
		"invalid ident":    "{{1bad}}",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(source)
			assert.Error(t, err)
		})
	}
}

func TestPackagedDefaultsAllParse(t *testing.T) {
	for name, source := range defaultTemplates {
		_, err := Parse(source)
		assert.NoError(t, err, "packaged template %s", name)
	}
}

type mapLoader map[string]string

func (m mapLoader) ActivePrompt(name string) (string, bool) {
	text, ok := m[name]
	return text, ok
}

func TestEngineRendersPackagedDefault(t *testing.T) {
	e := NewEngine(nil, "", logger.NewNop())
	got := e.Render("tender_user", map[string]string{
		"section_title": "实施方案",
		"project_name":  "智慧园区平台",
	})
	assert.Contains(t, got, "实施方案")
	assert.Contains(t, got, "智慧园区平台")
	assert.NotContains(t, got, "{{")
}

func TestEngineLoaderOverrideWinsOverFileAndDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tender_user.md"),
		[]byte("file: {{section_title}}"), 0o644))
	loader := mapLoader{"tender_user": "loader: {{section_title}}"}

	e := NewEngine(loader, dir, logger.NewNop())
	got := e.Render("tender_user", map[string]string{"section_title": "报价"})
	assert.Equal(t, "loader: 报价", got)
}

func TestEngineOverrideDirWinsOverDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tender_user.md"),
		[]byte("file: {{section_title}}"), 0o644))

	e := NewEngine(nil, dir, logger.NewNop())
	assert.Equal(t, "file: 报价", e.Render("tender_user", map[string]string{"section_title": "报价"}))
}

func TestEngineMissingTemplateFallsBack(t *testing.T) {
	e := NewEngine(nil, "", logger.NewNop())
	got := e.Render("no_such_template", map[string]string{"section_title": "项目概述"})
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "项目概述")
}

func TestEngineUnparseableTemplateFallsBack(t *testing.T) {
	loader := mapLoader{"tender_user": "{{#if broken}}never closed"}
	e := NewEngine(loader, "", logger.NewNop())
	got := e.Render("tender_user", map[string]string{"section_title": "项目概述"})
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "项目概述")
	assert.NotContains(t, got, "never closed")
}
