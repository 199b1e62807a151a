package knowledge

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiEmbedder implements Embedder using the Gemini embedding models.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dim int) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model, dimension: dim}, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var cfg *genai.EmbedContentConfig
	if g.dimension > 0 {
		dim := int32(g.dimension)
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		res, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), cfg)
		if err != nil {
			return nil, fmt.Errorf("embed text: %w", err)
		}
		if len(res.Embeddings) == 0 {
			return nil, fmt.Errorf("gemini returned no embedding")
		}
		out = append(out, res.Embeddings[0].Values)
	}
	return out, nil
}

func (g *GeminiEmbedder) Dimension() int {
	return g.dimension
}
