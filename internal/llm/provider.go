package llm

import "context"

// Provider is one configured LLM backend. Adapters normalize every
// response to content plus input/output token counts.
type Provider interface {
	// Name returns the provider name ("openai", "anthropic", "google")
	Name() string

	// Complete runs a single chat completion
	Complete(ctx context.Context, req CompletionRequest) (*Response, error)
}

// CompletionRequest is the normalized request an adapter receives. The
// gateway has already resolved routing, so Model is the provider-native
// model name without the "provider/" prefix.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	JSONMode    bool
	Temperature float64
	MaxTokens   int
}

// Response is the normalized completion result. In JSON mode Content is
// the raw JSON text with any surrounding code fences already stripped;
// callers unmarshal it into their stage-specific types.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns combined input and output token usage
func (r *Response) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}
