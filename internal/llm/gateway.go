package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/topicalmd/contentpipe/internal/model"
)

// DefaultMaxRetries is the number of extra attempts after the first failure
const DefaultMaxRetries = 2

// retryBackoffBase is the first retry delay; it doubles on each attempt
const retryBackoffBase = 2 * time.Second

// Request is one gateway call. Model is a "provider/model-name" string; a
// missing provider prefix routes to the configured default. Zero
// Temperature and MaxRetries mean "use the configured defaults".
type Request struct {
	System      string
	User        string
	JSONMode    bool
	Temperature float64
	MaxTokens   int
	Model       string
	MaxRetries  int
}

// Gateway routes calls to the configured providers with model-string
// routing, key-presence fallback, and retries with exponential backoff.
// Construct one per process and pass it to the agent stages.
type Gateway struct {
	providers       map[string]Provider
	defaultProvider string
	defaultModel    string
	temperature     float64
	maxRetries      int
	limiter         *rate.Limiter
	sleep           func(time.Duration) // injectable for tests
}

// NewGateway builds a gateway holding one initialized client per provider
// with a configured credential. Providers without a key are simply absent;
// calls naming them fall back to the default provider.
func NewGateway(ctx context.Context, cfg *model.Config) (*Gateway, error) {
	providers := make(map[string]Provider)

	if cfg.LLM.OpenAIKey != "" {
		p, err := NewOpenAIProvider(cfg.LLM.OpenAIKey, "")
		if err != nil {
			return nil, fmt.Errorf("init openai provider: %w", err)
		}
		providers[p.Name()] = p
	}
	if cfg.LLM.AnthropicKey != "" {
		p, err := NewAnthropicProvider(cfg.LLM.AnthropicKey, "", cfg.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("init anthropic provider: %w", err)
		}
		providers[p.Name()] = p
	}
	if cfg.LLM.GoogleKey != "" {
		p, err := NewGoogleProvider(ctx, cfg.LLM.GoogleKey)
		if err != nil {
			return nil, fmt.Errorf("init google provider: %w", err)
		}
		providers[p.Name()] = p
	}

	defaultProvider, defaultModel := SplitModel(cfg.Models.Default)
	if len(providers) == 0 {
		return nil, fmt.Errorf("no LLM provider credentials configured")
	}
	if _, ok := providers[defaultProvider]; !ok {
		// Default must be callable; pick any configured provider.
		for name := range providers {
			slog.Warn("no key for default provider, switching default", "from", defaultProvider, "to", name)
			defaultProvider = name
			break
		}
	}

	maxRetries := cfg.LLM.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	return &Gateway{
		providers:       providers,
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
		temperature:     cfg.LLM.Temperature,
		maxRetries:      maxRetries,
		limiter:         rate.NewLimiter(rate.Every(time.Second), 1),
		sleep:           time.Sleep,
	}, nil
}

// SplitModel parses a "provider/model-name" string. A string without a
// provider prefix is treated as an openai model name.
func SplitModel(modelStr string) (provider, name string) {
	if i := strings.Index(modelStr, "/"); i >= 0 {
		return strings.ToLower(modelStr[:i]), modelStr[i+1:]
	}
	return "openai", modelStr
}

// resolve maps a model string to a configured provider, silently falling
// back to the default provider and model when the named provider has no
// credential. Callers never see a hard failure from a missing key on a
// non-default provider.
func (g *Gateway) resolve(modelStr string) (Provider, string) {
	if modelStr == "" {
		return g.providers[g.defaultProvider], g.defaultModel
	}

	providerName, modelName := SplitModel(modelStr)
	if p, ok := g.providers[providerName]; ok {
		return p, modelName
	}

	slog.Warn("no API key for provider, falling back to default",
		"provider", providerName,
		"fallback", g.defaultProvider+"/"+g.defaultModel)
	return g.providers[g.defaultProvider], g.defaultModel
}

// Call makes an LLM call with automatic provider routing and retries.
// Any error, including invalid JSON in JSON mode, is retried with
// exponential backoff before the aggregated failure is surfaced.
func (g *Gateway) Call(ctx context.Context, req Request) (*Response, error) {
	provider, modelName := g.resolve(req.Model)

	temperature := req.Temperature
	if temperature == 0 {
		temperature = g.temperature
	}
	maxRetries := req.MaxRetries
	if maxRetries == 0 {
		maxRetries = g.maxRetries
	}

	completion := CompletionRequest{
		Model:       modelName,
		System:      req.System,
		User:        req.User,
		JSONMode:    req.JSONMode,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := provider.Complete(ctx, completion)
		if err == nil && req.JSONMode && !json.Valid([]byte(resp.Content)) {
			err = fmt.Errorf("response is not valid JSON")
		}
		if err == nil {
			slog.Debug("LLM call ok",
				"provider", provider.Name(), "model", modelName, "attempt", attempt,
				"input_tokens", resp.InputTokens, "output_tokens", resp.OutputTokens)
			return resp, nil
		}

		lastErr = err
		slog.Warn("LLM call failed", "provider", provider.Name(), "model", modelName, "attempt", attempt, "error", err)

		if attempt <= maxRetries {
			g.sleep(retryBackoffBase << (attempt - 1))
		}
	}

	return nil, fmt.Errorf("LLM call failed after %d attempts (%s/%s): %w",
		maxRetries+1, provider.Name(), modelName, lastErr)
}

// CallJSON makes a JSON-mode call and unmarshals the content into out
func (g *Gateway) CallJSON(ctx context.Context, req Request, out any) (*Response, error) {
	req.JSONMode = true
	resp, err := g.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resp.Content), out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Model, err)
	}
	return resp, nil
}

// StripCodeFences removes a surrounding markdown code fence (```json ... ```)
// that some models wrap around JSON output.
func StripCodeFences(text string) string {
	stripped := strings.TrimSpace(text)
	if !strings.HasPrefix(stripped, "```") {
		return stripped
	}

	if i := strings.Index(stripped, "\n"); i >= 0 {
		stripped = stripped[i+1:]
	} else {
		stripped = ""
	}
	stripped = strings.TrimRight(stripped, " \t\n")
	stripped = strings.TrimSuffix(stripped, "```")
	return strings.TrimRight(stripped, " \t\n")
}
