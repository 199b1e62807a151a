package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bidgen/internal/config"
	"bidgen/internal/generation"
	"bidgen/internal/knowledge"
	"bidgen/internal/llm"
	"bidgen/internal/logger"
	"bidgen/internal/monitoring"
	"bidgen/internal/pipeline"
	"bidgen/internal/prompt"
	"bidgen/internal/quality"
	"bidgen/internal/retrieval"
	"bidgen/internal/strategy"
	"bidgen/internal/template"
)

var (
	rootCmd = &cobra.Command{
		Use:   "bidgen",
		Short: "Knowledge-grounded tender and grant document generation",
	}

	configPath string
	dryRun     bool

	outDir   string
	auditDB  string
	topK     int
	stratArg string

	assessDocType string
	assessLevel   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file (default: layered lookup)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Use the in-memory store and mock LLM, no network calls")

	generateCmd.Flags().StringVarP(&outDir, "out", "o", "output", "Directory for generated sections and the quality report")
	generateCmd.Flags().StringVar(&auditDB, "audit-db", "", "SQLite file for audit records (default: log only)")
	generateCmd.Flags().IntVar(&topK, "top-k", 0, "Fragments to retrieve per section (default from config)")
	generateCmd.Flags().StringVar(&stratArg, "strategy", "", "Strategy name override (default from outline)")

	assessCmd.Flags().StringVar(&assessDocType, "doc-type", "tender", "Document type to assess against")
	assessCmd.Flags().IntVar(&assessLevel, "level", 1, "Section level of the content")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(strategiesCmd)
}

// outline is the YAML run description passed to `bidgen generate`.
type outline struct {
	DocumentType    string            `yaml:"document_type"`
	KnowledgeBaseID string            `yaml:"knowledge_base_id"`
	Strategy        string            `yaml:"strategy"`
	TopK            int               `yaml:"top_k"`
	ProjectInfo     map[string]string `yaml:"project_info"`
	Requirements    map[string]string `yaml:"requirements"`
	Sections        []outlineSection  `yaml:"sections"`
	// Documents seed the in-memory store for dry runs.
	Documents []outlineDoc `yaml:"documents"`
}

type outlineSection struct {
	Title string `yaml:"title"`
	Level int    `yaml:"level"`
}

type outlineDoc struct {
	ID          string `yaml:"id"`
	Text        string `yaml:"text"`
	DocType     string `yaml:"doc_type"`
	SourceDocID string `yaml:"source_doc_id"`
}

func loadConfig() (*config.Provider, *config.Pipeline, error) {
	var (
		provider *config.Provider
		err      error
	)
	if configPath != "" {
		provider, err = config.LoadFile(configPath)
	} else {
		provider, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.PipelineFromProvider(provider)
	if err != nil {
		return nil, nil, err
	}
	return provider, cfg, nil
}

func newStore(ctx context.Context, provider *config.Provider, ol *outline, lg *logger.Logger) (knowledge.SearchStore, error) {
	if dryRun {
		docs := make([]knowledge.MemoryDoc, 0, len(ol.Documents))
		for i, d := range ol.Documents {
			id := d.ID
			if id == "" {
				id = fmt.Sprintf("doc-%d", i+1)
			}
			docs = append(docs, knowledge.MemoryDoc{
				ID:              id,
				KnowledgeBaseID: ol.KnowledgeBaseID,
				Text:            d.Text,
				DocType:         d.DocType,
				SourceDocID:     d.SourceDocID,
			})
		}
		return knowledge.NewMemoryStore(docs...), nil
	}

	embedder, err := knowledge.NewEmbedder(ctx, knowledge.EmbedderOptions{
		Provider:  provider.GetString("knowledge.embedder.provider", "gemini"),
		APIKey:    provider.GetString("knowledge.embedder.api_key", os.Getenv("BIDGEN_EMBEDDER_API_KEY")),
		Model:     provider.GetString("knowledge.embedder.model", "gemini-embedding-001"),
		Dimension: provider.GetInt("knowledge.embedder.dimension", 0),
		BaseURL:   provider.GetString("knowledge.embedder.base_url", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return knowledge.NewQdrantStore(knowledge.QdrantOptions{
		URL:        provider.GetString("knowledge.qdrant.url", "localhost:6334"),
		APIKey:     provider.GetString("knowledge.qdrant.api_key", ""),
		Collection: provider.GetString("knowledge.qdrant.collection", ""),
	}, embedder, lg)
}

func newOrchestrator(ctx context.Context, provider *config.Provider) (llm.Orchestrator, error) {
	if dryRun {
		return &llm.Mock{}, nil
	}
	return llm.NewOrchestrator(ctx, llm.Options{
		Provider: provider.GetString("llm.provider", "gemini"),
		APIKey:   provider.GetString("llm.api_key", os.Getenv("BIDGEN_LLM_API_KEY")),
		Model:    provider.GetString("llm.model", "gemini-2.5-flash"),
		BaseURL:  provider.GetString("llm.base_url", ""),
	})
}

var generateCmd = &cobra.Command{
	Use:   "generate <outline.yaml>",
	Short: "Generate all sections of a document outline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read outline: %v", err)
		}
		var ol outline
		if err := yaml.Unmarshal(data, &ol); err != nil {
			log.Fatalf("Failed to parse outline: %v", err)
		}
		if len(ol.Sections) == 0 {
			log.Fatalf("Outline has no sections")
		}

		provider, cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		lg, err := logger.New(provider.GetString("log.mode", ""))
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		defer lg.Sync()

		store, err := newStore(ctx, provider, &ol, lg)
		if err != nil {
			log.Fatalf("Knowledge store setup failed: %v", err)
		}
		orch, err := newOrchestrator(ctx, provider)
		if err != nil {
			log.Fatalf("LLM setup failed: %v", err)
		}

		var sink monitoring.Sink = monitoring.NewLogSink(lg)
		if auditDB != "" {
			sqlSink, err := monitoring.NewSQLiteAuditSink(auditDB, lg)
			if err != nil {
				log.Fatalf("Failed to open audit database: %v", err)
			}
			defer sqlSink.Close()
			sink = sqlSink
		}

		registry := strategy.Default()
		p := pipeline.New(
			retrieval.NewRetriever(store, registry, cfg, lg),
			prompt.NewBuilder(template.NewEngine(nil, provider.GetString("templates.override_dir", ""), lg), registry, cfg, lg),
			generation.NewGenerator(orch, cfg, lg),
			quality.NewAssessor(cfg, lg),
			cfg, sink, lg,
		)

		req := pipeline.Request{
			KnowledgeBaseID: ol.KnowledgeBaseID,
			DocumentType:    ol.DocumentType,
			Strategy:        firstNonEmpty(stratArg, ol.Strategy),
			TopK:            pickTopK(topK, ol.TopK),
			ProjectInfo:     ol.ProjectInfo,
			Requirements:    ol.Requirements,
			Sections:        toSections(ol.Sections),
		}

		fmt.Printf("🚀 Generating %d sections (%s)...\n", len(req.Sections), req.DocumentType)
		outcomes, err := p.RunDocument(ctx, req)
		if err != nil {
			log.Fatalf("Run aborted: %v", err)
		}

		if err := writeOutputs(outDir, outcomes); err != nil {
			log.Fatalf("Failed to write outputs: %v", err)
		}

		failed := 0
		for _, out := range outcomes {
			if out.Err != nil {
				failed++
				fmt.Printf("⚠️  %s failed: %v\n", out.Result.Section.Title, out.Err)
			}
		}
		fmt.Printf("✅ Done: %d sections written to %s (%d failed). See quality_report.md.\n",
			len(outcomes)-failed, outDir, failed)
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess <section.md>",
	Short: "Score an existing section file against the quality rules",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read section: %v", err)
		}

		_, cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Configuration error: %v", err)
		}

		gen := generation.Analyze(string(data))
		assessor := quality.NewAssessor(cfg, logger.NewNop())
		m := assessor.Assess(gen, retrieval.Result{}, assessLevel, assessDocType)

		fmt.Printf("📊 %s (level %d, %s)\n", filepath.Base(args[0]), assessLevel, assessDocType)
		fmt.Printf("  words:        %d\n", gen.WordCount)
		fmt.Printf("  format:       %s\n", gen.FormatType)
		fmt.Printf("  completeness: %.2f\n", m.CompletenessScore)
		fmt.Printf("  evidence:     %.2f\n", m.EvidenceScore)
		fmt.Printf("  format score: %.2f\n", m.FormatScore)
		fmt.Printf("  overall:      %.2f (%s)\n", m.OverallScore, m.Grade)
		if len(m.Issues) > 0 {
			fmt.Printf("  issues:       %s\n", strings.Join(m.Issues, "; "))
		}
	},
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List registered retrieval/generation strategies",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range strategy.Default().Names() {
			marker := " "
			if name == strategy.AutoName {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
	},
}

func toSections(in []outlineSection) []pipeline.Section {
	out := make([]pipeline.Section, 0, len(in))
	for _, s := range in {
		level := s.Level
		if level < 1 {
			level = 1
		}
		out = append(out, pipeline.Section{Title: s.Title, Level: level})
	}
	return out
}

func writeOutputs(dir string, outcomes []pipeline.Outcome) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var report strings.Builder
	report.WriteString("# 质量报告\n\n")
	report.WriteString("| 章节 | 字数 | 置信度 | 总分 | 等级 | 问题 |\n")
	report.WriteString("|---|---|---|---|---|---|\n")

	for i, out := range outcomes {
		if out.Err != nil {
			fmt.Fprintf(&report, "| %s | - | - | - | - | 生成失败：%v |\n", out.Result.Section.Title, out.Err)
			continue
		}
		res := out.Result
		name := fmt.Sprintf("%02d_%s.md", i+1, sanitizeFilename(res.Section.Title))
		body := fmt.Sprintf("%s %s\n\n%s\n",
			strings.Repeat("#", res.Section.Level), res.Section.Title, res.Generation.Content)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return err
		}
		issues := strings.Join(res.Metrics.Issues, "；")
		if issues == "" {
			issues = "-"
		}
		fmt.Fprintf(&report, "| %s | %d | %s | %.2f | %s | %s |\n",
			res.Section.Title, res.Generation.WordCount, res.Generation.Confidence,
			res.Metrics.OverallScore, res.Metrics.Grade, issues)
	}

	return os.WriteFile(filepath.Join(dir, "quality_report.md"), []byte(report.String()), 0o644)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func pickTopK(flag, fromOutline int) int {
	if flag > 0 {
		return flag
	}
	return fromOutline
}
