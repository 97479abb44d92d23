package pipeline

import "fmt"

// Cost estimates in USD per 1k tokens, keyed by "provider/model"
var (
	costPer1KInput = map[string]float64{
		"openai/gpt-4o":                        0.0025,
		"anthropic/claude-sonnet-4-5-20250929": 0.003,
		"google/gemini-2.0-flash":              0.0001,
	}
	costPer1KOutput = map[string]float64{
		"openai/gpt-4o":                        0.01,
		"anthropic/claude-sonnet-4-5-20250929": 0.015,
		"google/gemini-2.0-flash":              0.0004,
	}
)

// costPerImage is for one DALL-E 3 1024x1024 generation
const costPerImage = 0.04

// CostTracker accumulates token and image usage for one run. The runner is
// single-threaded so plain increments suffice.
type CostTracker struct {
	InputTokens     int
	OutputTokens    int
	ImagesGenerated int
	ImagesFetched   int
}

// AddLLMUsage records one call's token consumption
func (t *CostTracker) AddLLMUsage(inputTokens, outputTokens int) {
	t.InputTokens += inputTokens
	t.OutputTokens += outputTokens
}

// AddImage records an image acquisition; only generated ones cost money
func (t *CostTracker) AddImage(generated bool) {
	if generated {
		t.ImagesGenerated++
	} else {
		t.ImagesFetched++
	}
}

// TotalCost estimates the run's spend. Token counts are priced at the
// average rate across the model table since usage is not tracked per model.
func (t *CostTracker) TotalCost() float64 {
	avgInput := average(costPer1KInput)
	avgOutput := average(costPer1KOutput)
	return float64(t.InputTokens)/1000*avgInput +
		float64(t.OutputTokens)/1000*avgOutput +
		float64(t.ImagesGenerated)*costPerImage
}

// Summary returns a one-line human-readable usage report
func (t *CostTracker) Summary() string {
	return fmt.Sprintf("Tokens: %d in / %d out | Images: %d generated, %d fetched | Est. cost: $%.4f",
		t.InputTokens, t.OutputTokens, t.ImagesGenerated, t.ImagesFetched, t.TotalCost())
}

func average(table map[string]float64) float64 {
	if len(table) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range table {
		sum += v
	}
	return sum / float64(len(table))
}
