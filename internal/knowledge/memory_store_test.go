package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore() *MemoryStore {
	return NewMemoryStore(
		MemoryDoc{ID: "f1", KnowledgeBaseID: "kb-1", DocType: "tender",
			Text: "公司拥有二十年智慧园区系统集成经验", SourceDocID: "doc-1"},
		MemoryDoc{ID: "f2", KnowledgeBaseID: "kb-1", DocType: "tender",
			Text: "智慧园区项目实施方案与交付流程", SourceDocID: "doc-2"},
		MemoryDoc{ID: "f3", KnowledgeBaseID: "kb-1", DocType: "declare",
			Text: "科研项目申报资质与获奖情况", SourceDocID: "doc-3"},
		MemoryDoc{ID: "f4", KnowledgeBaseID: "kb-other", DocType: "tender",
			Text: "智慧园区运维服务说明", SourceDocID: "doc-4"},
	)
}

func TestMemoryStoreScopesKnowledgeBase(t *testing.T) {
	chunks, err := sampleStore().Search(context.Background(), "kb-1", "智慧园区", nil, 10)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.NotEqual(t, "f4", c.ID, "other knowledge base must not leak in")
	}
	assert.NotEmpty(t, chunks)
}

func TestMemoryStoreAppliesDocTypeFilters(t *testing.T) {
	chunks, err := sampleStore().Search(context.Background(), "kb-1", "项目", []string{"declare"}, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "f3", chunks[0].ID)
}

func TestMemoryStoreRanksByOverlapDescending(t *testing.T) {
	chunks, err := sampleStore().Search(context.Background(), "kb-1", "智慧园区实施方案", nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i-1].Relevance, chunks[i].Relevance)
	}
	assert.Equal(t, "f2", chunks[0].ID)
}

func TestMemoryStoreHonorsTopK(t *testing.T) {
	chunks, err := sampleStore().Search(context.Background(), "kb-1", "项目 方案 经验", nil, 1)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sampleStore().Search(ctx, "kb-1", "项目", nil, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
