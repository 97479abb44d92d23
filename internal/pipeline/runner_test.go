package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/topicalmd/contentpipe/internal/model"
)

func TestTally(t *testing.T) {
	results := []model.ItemResult{
		{Success: true, Decision: model.DecisionPublish},
		{Success: true, Decision: model.DecisionPublish},
		{Success: true, Decision: model.DecisionDraft},
		{Success: false, Error: "writer failed"},
	}
	published, drafted, failed := tally(results)
	if published != 2 || drafted != 1 || failed != 1 {
		t.Errorf("tally = %d/%d/%d", published, drafted, failed)
	}
}

func TestRound1(t *testing.T) {
	cases := map[float64]float64{
		1.04:  1.0,
		1.05:  1.1,
		12.34: 12.3,
		0:     0,
	}
	for in, want := range cases {
		if got := round1(in); got != want {
			t.Errorf("round1(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestTruncateAndLimit(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate short = %q", got)
	}
	if got := limitStrings([]string{"a", "b", "c"}, 2); len(got) != 2 {
		t.Errorf("limitStrings = %v", got)
	}
	if got := limitStrings([]string{"a"}, 2); len(got) != 1 {
		t.Errorf("limitStrings short = %v", got)
	}
}

func TestModelName(t *testing.T) {
	if got := modelName("openai/gpt-4o"); got != "gpt-4o" {
		t.Errorf("modelName = %q", got)
	}
}

func TestWriteStepSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	t.Setenv("GITHUB_STEP_SUMMARY", path)

	results := []model.ItemResult{
		{Title: "Best Creams for Knee Pain", ContentType: model.ContentTypeBestFor, Score: 85, Decision: model.DecisionPublish, Success: true},
		{Title: "Broken Article", ContentType: model.ContentTypeFAQ, Success: false, Error: "outline agent: timeout waiting for response"},
	}
	writeStepSummary(results, &CostTracker{InputTokens: 100, OutputTokens: 50}, true)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	out := string(data)
	for _, fragment := range []string{
		"## Content Pipeline Run",
		"2 total, 1 published, 0 drafted, 1 failed",
		"| Best Creams for Knee Pain | best-for | 85 | publish |",
		"outline agent: timeo",
		"**Dry run**: true",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("summary missing %q:\n%s", fragment, out)
		}
	}
}

func TestWriteStepSummarySkippedOutsideCI(t *testing.T) {
	t.Setenv("GITHUB_STEP_SUMMARY", "")
	writeStepSummary(nil, &CostTracker{}, false)
}
