package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport marks a provider call that failed before a completion was
// produced. Callers must not retry here and must not treat the failure as a
// low-quality generation.
var ErrTransport = errors.New("llm transport failure")

// Request is one completion call. Temperature and MaxTokens arrive fully
// resolved; providers pass them through unchanged.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Orchestrator is the completion capability the generator depends on.
type Orchestrator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// transportErr tags a provider failure while keeping the cause visible to
// errors.Is, so cancellation remains distinguishable from a network fault.
func transportErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, provider, err)
}
