package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleProvider implements the Provider interface for Gemini models
type GoogleProvider struct {
	client *genai.Client
}

// NewGoogleProvider creates a new Gemini provider
func NewGoogleProvider(ctx context.Context, apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GoogleProvider{client: client}, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// Close releases the underlying gRPC connection
func (p *GoogleProvider) Close() error {
	return p.client.Close()
}

// Complete runs a generation through the Gemini API
func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (*Response, error) {
	m := p.client.GenerativeModel(req.Model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	temp := float32(req.Temperature)
	m.Temperature = &temp
	if req.MaxTokens > 0 {
		maxTokens := int32(req.MaxTokens)
		m.MaxOutputTokens = &maxTokens
	}
	if req.JSONMode {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text, err := geminiText(resp)
	if err != nil {
		return nil, err
	}
	if req.JSONMode {
		text = StripCodeFences(text)
	}

	out := &Response{Content: text}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// geminiText extracts the concatenated text parts from a Gemini response
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in Gemini response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in Gemini response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in Gemini response")
	}

	return strings.TrimSpace(strings.Join(parts, "")), nil
}
