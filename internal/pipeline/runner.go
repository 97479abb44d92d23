// Package pipeline orchestrates the content stages in sequence: research
// once per run, then outline, write, validate, edit, and publish per
// article. A failure in one article never aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/topicalmd/contentpipe/internal/agent"
	"github.com/topicalmd/contentpipe/internal/catalog"
	"github.com/topicalmd/contentpipe/internal/llm"
	"github.com/topicalmd/contentpipe/internal/model"
	"github.com/topicalmd/contentpipe/internal/publish"
	"github.com/topicalmd/contentpipe/internal/sanity"
	"github.com/topicalmd/contentpipe/internal/validate"
)

// Runner holds the wired pipeline stages for one run
type Runner struct {
	Config    *model.Config
	Research  *agent.Research
	Outline   *agent.Outline
	Writer    *agent.Writer
	Editor    *agent.Editor
	Validator *validate.Validator
	Publisher *publish.Publisher
	Tracker   *CostTracker
}

// New wires all pipeline components from configuration. A missing product
// catalog degrades to an empty one with a warning; a missing LLM credential
// set is fatal.
func New(ctx context.Context, cfg *model.Config) (*Runner, error) {
	gateway, err := llm.NewGateway(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init gateway: %w", err)
	}

	store := sanity.NewClient(cfg.Sanity)

	products, err := catalog.Load(cfg.Pipeline.CatalogPath)
	if err != nil {
		slog.Warn("could not load product catalog, continuing without it",
			"path", cfg.Pipeline.CatalogPath, "error", err)
		products = catalog.New(nil)
	}

	tracker := &CostTracker{}
	images := publish.NewImageAcquirer(store, cfg.LLM.OpenAIKey)
	images.RecordImage = tracker.AddImage

	validator := validate.NewValidator()
	validator.MaxLenientIssues = cfg.Pipeline.MaxLenientIssues

	return &Runner{
		Config:    cfg,
		Research:  &agent.Research{Gateway: gateway, Store: store, Catalog: products, Model: cfg.Models.Research},
		Outline:   &agent.Outline{Gateway: gateway, Model: cfg.Models.Outline},
		Writer:    &agent.Writer{Gateway: gateway, Store: store, Model: cfg.Models.Writer},
		Editor:    &agent.Editor{Gateway: gateway, Model: cfg.Models.Editor, PublishThreshold: cfg.Pipeline.PublishThreshold},
		Validator: validator,
		Publisher: &publish.Publisher{
			Store:       store,
			Images:      images,
			Threshold:   cfg.Pipeline.PublishThreshold,
			SourceModel: modelName(cfg.Models.Writer),
		},
		Tracker: tracker,
	}, nil
}

// modelName strips the provider prefix from a "provider/model" string
func modelName(modelStr string) string {
	_, name := llm.SplitModel(modelStr)
	return name
}

// Run executes the full pipeline and returns one result per attempted
// article. The error is non-nil only when the run could not start at all.
func (r *Runner) Run(ctx context.Context, domainFilter string, dryRun bool) ([]model.ItemResult, error) {
	slog.Info("model configuration",
		"research", r.Config.Models.Research,
		"outline", r.Config.Models.Outline,
		"writer", r.Config.Models.Writer,
		"editor", r.Config.Models.Editor)

	slog.Info("stage 1: research", "model", r.Config.Models.Research, "domain", domainFilter)
	briefs, researchTokens, err := r.Research.Run(ctx, domainFilter, dryRun)
	if err != nil {
		return nil, fmt.Errorf("research stage: %w", err)
	}
	r.Tracker.AddLLMUsage(researchTokens/2, researchTokens/2)

	if len(briefs) == 0 {
		slog.Error("research returned no briefs, aborting")
		return nil, nil
	}
	if len(briefs) > r.Config.Pipeline.MaxArticles {
		briefs = briefs[:r.Config.Pipeline.MaxArticles]
	}
	slog.Info("research complete", "briefs", len(briefs))

	results := make([]model.ItemResult, 0, len(briefs))
	for i, brief := range briefs {
		slog.Info("article start", "n", i+1, "of", len(briefs), "topic", brief.Topic)
		start := time.Now()

		result, err := r.runArticle(ctx, brief, dryRun)
		result.ElapsedSeconds = round1(time.Since(start).Seconds())
		if err != nil {
			slog.Error("article failed", "topic", brief.Topic, "error", err)
			result = model.ItemResult{
				Title:          brief.Topic,
				ContentType:    brief.ContentType,
				Success:        false,
				Error:          err.Error(),
				ElapsedSeconds: round1(time.Since(start).Seconds()),
			}
		}
		results = append(results, result)
	}

	r.logSummary(results, dryRun)
	writeStepSummary(results, r.Tracker, dryRun)
	return results, nil
}

// runArticle takes one brief through outline, write, validate, edit, and
// publish
func (r *Runner) runArticle(ctx context.Context, brief model.ResearchBrief, dryRun bool) (model.ItemResult, error) {
	slog.Info("stage 2: outline")
	outline, outlineTokens, err := r.Outline.Run(ctx, brief)
	if err != nil {
		return model.ItemResult{}, err
	}
	r.Tracker.AddLLMUsage(outlineTokens/2, outlineTokens/2)

	slog.Info("stage 3: writer", "domain", brief.Domain)
	article, writerTokens, err := r.Writer.Run(ctx, brief, outline, dryRun)
	if err != nil {
		return model.ItemResult{}, err
	}
	r.Tracker.AddLLMUsage(writerTokens/2, writerTokens/2)

	slog.Info("stage 3.5: format validation")
	article, report := r.Validator.Run(article, outline)
	if len(report.Issues) > 0 {
		slog.Info("validation issues",
			"found", report.IssueCount, "auto_fixed", len(report.FixesApplied))
	}

	slog.Info("stage 4: editor")
	edit, editorTokens, err := r.Editor.Run(ctx, brief, outline, article, report.Issues)
	if err != nil {
		return model.ItemResult{}, err
	}
	r.Tracker.AddLLMUsage(editorTokens/2, editorTokens/2)

	slog.Info("stage 5: image + publish")
	result := r.Publisher.Publish(ctx, brief, outline, edit, dryRun)

	status := "DRAFT"
	if result.Decision == model.DecisionPublish {
		status = "PUBLISHED"
	}
	slog.Info("article result",
		"status", status, "score", result.Score, "image", result.HasImage)
	for _, issue := range limitStrings(edit.IssuesFound, 3) {
		slog.Info("editor issue", "issue", issue)
	}
	return result, nil
}

func (r *Runner) logSummary(results []model.ItemResult, dryRun bool) {
	published, drafted, failed := tally(results)
	slog.Info("pipeline complete",
		"dry_run", dryRun,
		"articles", len(results),
		"published", published,
		"drafted", drafted,
		"failed", failed)
	slog.Info("usage", "summary", r.Tracker.Summary())
}

func tally(results []model.ItemResult) (published, drafted, failed int) {
	for _, res := range results {
		if !res.Success {
			failed++
			continue
		}
		if res.Decision == model.DecisionPublish {
			published++
		} else {
			drafted++
		}
	}
	return published, drafted, failed
}

// writeStepSummary appends a markdown run report when running under a CI
// job that exposes GITHUB_STEP_SUMMARY
func writeStepSummary(results []model.ItemResult, tracker *CostTracker, dryRun bool) {
	path := os.Getenv("GITHUB_STEP_SUMMARY")
	if path == "" {
		return
	}

	published, drafted, failed := tally(results)
	var b strings.Builder
	b.WriteString("## Content Pipeline Run\n")
	fmt.Fprintf(&b, "- **Articles**: %d total, %d published, %d drafted, %d failed\n",
		len(results), published, drafted, failed)
	fmt.Fprintf(&b, "- **Cost**: %s\n", tracker.Summary())
	fmt.Fprintf(&b, "- **Dry run**: %t\n\n", dryRun)
	b.WriteString("| Title | Type | Score | Decision |\n")
	b.WriteString("|-------|------|-------|----------|\n")
	for _, res := range results {
		decision := res.Decision
		if decision == "" {
			decision = truncate(res.Error, 20)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n",
			truncate(res.Title, 50), res.ContentType, res.Score, decision)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("could not write step summary", "error", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		slog.Warn("could not write step summary", "error", err)
	}
}

func limitStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func round1(seconds float64) float64 {
	return float64(int(seconds*10+0.5)) / 10
}
