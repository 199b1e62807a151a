package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportErrKeepsCauseVisible(t *testing.T) {
	cause := errors.New("connection refused")
	err := transportErr("gemini", cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)

	cancelled := transportErr("openai", context.Canceled)
	assert.ErrorIs(t, cancelled, ErrTransport)
	assert.ErrorIs(t, cancelled, context.Canceled)
}

func TestMockRecordsCalls(t *testing.T) {
	m := &Mock{Response: "正文内容"}
	got, err := m.Complete(context.Background(), Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Temperature:  0.5,
		MaxTokens:    1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "正文内容", got)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "user", calls[0].UserPrompt)
	assert.Equal(t, 1024, calls[0].MaxTokens)
}

func TestMockHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &Mock{}
	_, err := m.Complete(ctx, Request{UserPrompt: "user"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Calls())
}

func TestMockConfiguredError(t *testing.T) {
	boom := errors.New("boom")
	m := &Mock{Err: boom}
	_, err := m.Complete(context.Background(), Request{UserPrompt: "user"})
	assert.ErrorIs(t, err, boom)
}

func TestFactoryMockAndUnknownProvider(t *testing.T) {
	orch, err := NewOrchestrator(context.Background(), Options{Provider: "mock"})
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, orch)

	_, err = NewOrchestrator(context.Background(), Options{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
