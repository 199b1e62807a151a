package llm

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a recording orchestrator for tests and dry runs. With no Response
// configured it echoes a short Markdown body derived from the request.
type Mock struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []Request
}

func (m *Mock) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return fmt.Sprintf("本节内容基于以下提示生成。\n\n## 说明\n\n%.120s\n", req.UserPrompt), nil
}

// Calls returns a copy of the requests seen so far.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
