package template

// FallbackName is the pseudo template name for the hardcoded minimal prompt
// the engine degrades to when a template is missing or unparseable.
const FallbackName = "fallback"

// fallbackPrompt must stay parseable at all times; it is the floor the
// engine can always stand on.
const fallbackPrompt = `请撰写文档章节「{{section_title}}」的内容。
{{#if has_references}}请参考以下资料：

{{references}}{{else}}当前没有可参考的资料，请基于通用行业知识撰写，并在不确定处标注待补充。{{/if}}
要求：使用 Markdown 格式，内容专业、结构清晰。`

// defaultTemplates are the packaged prompt templates, keyed by the names the
// document-type configuration refers to. An override directory or an active
// prompt from the loader service shadows these.
var defaultTemplates = map[string]string{
	"fallback": fallbackPrompt,

	"tender_system": `你是一位资深的投标文件撰写专家，熟悉政府采购和企业采购的投标规范。
你的任务是根据招标要求和企业资料，撰写专业、严谨、有说服力的投标文件章节。
撰写原则：
1. 紧扣招标文件的评分点和响应要求，逐条响应，不遗漏。
2. 优先使用企业真实资料中的数据、案例和资质，不编造事实。
3. 语言正式规范，多用行业术语，避免口语化表达。
4. 输出 Markdown 格式，层次清晰，适当使用列表与表格。`,

	"tender_user": `请撰写投标文件章节「{{section_title}}」。

项目名称：{{project_name}}
{{#if industry}}所属行业：{{industry}}
{{/if}}{{#if customer}}招标方：{{customer}}
{{/if}}{{#if requirements}}招标要求：
{{requirements}}

{{/if}}{{#if has_references}}以下是从企业知识库检索到的参考资料，请充分利用其中的事实、数据与案例：

{{references}}

{{else}}知识库中未检索到与本章节相关的资料，请基于行业通用实践撰写，
并在涉及企业具体数据处标注「待补充」，以便人工补全。

{{/if}}{{#if min_words}}篇幅要求：不少于 {{min_words}} 字。
{{/if}}请直接输出章节正文，不要重复章节标题，不要输出解释性前言。`,

	"declare_system": `你是一位经验丰富的项目申报材料撰写专家，熟悉科研项目、政府补贴和资质认定类申报的评审标准。
你的任务是根据申报指南要求和申报单位资料，撰写规范、翔实、重点突出的申报材料章节。
撰写原则：
1. 对照申报指南的评审指标组织内容，突出创新性和可行性。
2. 以申报单位的真实成果、资质与数据为依据，不夸大不虚构。
3. 行文严谨客观，量化表述优先。
4. 输出 Markdown 格式。`,

	"declare_user": `请撰写申报材料章节「{{section_title}}」。

项目名称：{{project_name}}
{{#if industry}}所属领域：{{industry}}
{{/if}}{{#if requirements}}申报指南要求：
{{requirements}}

{{/if}}{{#if has_references}}以下是从单位知识库检索到的参考资料：

{{references}}

{{else}}知识库中未检索到相关资料，请基于领域通用知识撰写，
并在涉及单位具体成果处标注「待补充」。

{{/if}}{{#if min_words}}篇幅要求：不少于 {{min_words}} 字。
{{/if}}请直接输出章节正文，不要重复章节标题。`,
}

// DefaultSource returns the packaged source text for a template name.
func DefaultSource(name string) (string, bool) {
	src, ok := defaultTemplates[name]
	return src, ok
}
