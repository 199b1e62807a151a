package knowledge

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"bidgen/internal/logger"
)

// QdrantStore implements SearchStore against a Qdrant collection. Fragments
// are stored with payload keys "text", "source_doc_id", "knowledge_base_id"
// and "doc_type"; search scopes by knowledge base and optional doc-type tags.
type QdrantStore struct {
	points     qdrant.PointsClient
	collection string
	embedder   Embedder
	log        *logger.Logger
}

// QdrantOptions configure the gRPC connection. An API key switches the
// client to TLS with per-call key metadata, matching Qdrant Cloud.
type QdrantOptions struct {
	URL        string
	APIKey     string
	Collection string
}

func NewQdrantStore(opts QdrantOptions, embedder Embedder, log *logger.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("qdrant store requires an embedder")
	}
	collection := opts.Collection
	if collection == "" {
		collection = "bidgen_documents"
	}

	var dialOpts []grpc.DialOption
	if opts.APIKey != "" {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
		apiKey := opts.APIKey
		auth := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
			return invoker(ctx, method, req, reply, cc, callOpts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(auth))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(opts.URL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect qdrant at %s: %w", opts.URL, err)
	}

	return &QdrantStore{
		points:     qdrant.NewPointsClient(conn),
		collection: collection,
		embedder:   embedder,
		log:        log.With("component", "qdrant"),
	}, nil
}

func (s *QdrantStore) Search(ctx context.Context, knowledgeBaseID, query string, filters []string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrStoreUnavailable, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector", ErrStoreUnavailable)
	}

	withPayload := true
	res, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vectors[0],
		Limit:          uint64(topK),
		Filter:         buildFilter(knowledgeBaseID, filters),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: withPayload},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	chunks := make([]ScoredChunk, 0, len(res.GetResult()))
	for _, point := range res.GetResult() {
		payload := point.GetPayload()
		chunks = append(chunks, ScoredChunk{
			ID:          point.GetId().GetUuid(),
			Text:        payloadString(payload, "text"),
			Relevance:   clampUnit(float64(point.GetScore())),
			SourceDocID: payloadString(payload, "source_doc_id"),
		})
	}
	s.log.Debug("similarity search finished", "knowledge_base_id", knowledgeBaseID, "hits", len(chunks))
	return chunks, nil
}

// buildFilter scopes to one knowledge base and, when tags are present,
// requires at least one matching doc-type tag.
func buildFilter(knowledgeBaseID string, tags []string) *qdrant.Filter {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{keywordCondition("knowledge_base_id", knowledgeBaseID)},
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		filter.Should = append(filter.Should, keywordCondition("doc_type", tag))
	}
	return filter
}

func keywordCondition(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key: key,
				Match: &qdrant.Match{
					MatchValue: &qdrant.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
