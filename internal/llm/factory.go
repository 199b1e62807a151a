package llm

import (
	"context"
	"fmt"
	"strings"
)

type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewOrchestrator builds the configured completion provider. The "mock"
// provider serves tests and dry runs without network access.
func NewOrchestrator(ctx context.Context, opts Options) (Orchestrator, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGemini(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model)
	case "mock":
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}
}
