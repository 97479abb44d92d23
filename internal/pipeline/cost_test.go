package pipeline

import (
	"math"
	"strings"
	"testing"
)

func TestCostTrackerAccumulates(t *testing.T) {
	tracker := &CostTracker{}
	tracker.AddLLMUsage(1000, 500)
	tracker.AddLLMUsage(2000, 1500)
	tracker.AddImage(true)
	tracker.AddImage(false)

	if tracker.InputTokens != 3000 || tracker.OutputTokens != 2000 {
		t.Errorf("tokens: %d in / %d out", tracker.InputTokens, tracker.OutputTokens)
	}
	if tracker.ImagesGenerated != 1 || tracker.ImagesFetched != 1 {
		t.Errorf("images: %d generated, %d fetched", tracker.ImagesGenerated, tracker.ImagesFetched)
	}
}

func TestCostTrackerTotalCost(t *testing.T) {
	tracker := &CostTracker{InputTokens: 1000, OutputTokens: 1000, ImagesGenerated: 2}

	avgIn := average(costPer1KInput)
	avgOut := average(costPer1KOutput)
	want := avgIn + avgOut + 2*costPerImage

	if got := tracker.TotalCost(); math.Abs(got-want) > 1e-9 {
		t.Errorf("TotalCost = %v, want %v", got, want)
	}
}

func TestCostTrackerZero(t *testing.T) {
	tracker := &CostTracker{}
	if tracker.TotalCost() != 0 {
		t.Errorf("empty tracker cost: %v", tracker.TotalCost())
	}
}

func TestSummaryMentionsAllCounters(t *testing.T) {
	tracker := &CostTracker{InputTokens: 12, OutputTokens: 34, ImagesGenerated: 1, ImagesFetched: 2}
	s := tracker.Summary()
	for _, fragment := range []string{"12 in", "34 out", "1 generated", "2 fetched", "$"} {
		if !strings.Contains(s, fragment) {
			t.Errorf("summary missing %q: %s", fragment, s)
		}
	}
}

func TestCostTableCoversConfiguredModels(t *testing.T) {
	for model := range costPer1KInput {
		if _, ok := costPer1KOutput[model]; !ok {
			t.Errorf("model %q has input cost but no output cost", model)
		}
	}
}
