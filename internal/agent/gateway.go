package agent

import (
	"context"

	"github.com/topicalmd/contentpipe/internal/llm"
)

// Gateway is the LLM call surface the agent stages depend on.
// *llm.Gateway satisfies it.
type Gateway interface {
	Call(ctx context.Context, req llm.Request) (*llm.Response, error)
	CallJSON(ctx context.Context, req llm.Request, out any) (*llm.Response, error)
}
