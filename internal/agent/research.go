// Package agent implements the pipeline's LLM stages: research, outline,
// writer, and editor. Each stage wraps the gateway with its own prompt
// contract and produces a typed intermediate artifact.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/topicalmd/contentpipe/internal/catalog"
	"github.com/topicalmd/contentpipe/internal/llm"
	"github.com/topicalmd/contentpipe/internal/model"
	"github.com/topicalmd/contentpipe/internal/sanity"
)

// briefsPerRun is how many prioritized briefs the research agent requests
const briefsPerRun = 3

// Research detects content gaps and produces prioritized article briefs
type Research struct {
	Gateway Gateway
	Store   *sanity.Client
	Catalog *catalog.Catalog
	Model   string
}

// gapSnapshot is the content inventory pulled from the store. In dry-run
// or degraded mode every field is simply empty.
type gapSnapshot struct {
	ProductsWithoutReviews  []productGap   `json:"products_without_reviews"`
	ContentCounts           map[string]int `json:"content_counts"`
	ExistingUseCaseSlugs    []string       `json:"existing_usecase_slugs"`
	ExistingReviewSlugs     []string       `json:"existing_review_slugs"`
	ExistingComparisonSlugs []string       `json:"existing_comparison_slugs"`
}

type productGap struct {
	ID               string `json:"_id"`
	Name             string `json:"name"`
	Brand            string `json:"brand"`
	Category         string `json:"category"`
	ActiveIngredient string `json:"activeIngredient"`
}

func emptyGaps() gapSnapshot {
	return gapSnapshot{
		ProductsWithoutReviews:  []productGap{},
		ContentCounts:           map[string]int{"reviews": 0, "useCases": 0, "comparisons": 0, "faqs": 0},
		ExistingUseCaseSlugs:    []string{},
		ExistingReviewSlugs:     []string{},
		ExistingComparisonSlugs: []string{},
	}
}

// gatherGaps queries the store for the current inventory. Any failure is
// logged and replaced with empty placeholders so the pipeline can run in
// a degraded mode on affiliate catalog data alone.
func (a *Research) gatherGaps(ctx context.Context, dryRun bool) gapSnapshot {
	if dryRun || a.Store == nil {
		return emptyGaps()
	}

	gaps := emptyGaps()
	queries := []struct {
		groq string
		out  any
	}{
		{sanity.ProductsWithoutReviews, &gaps.ProductsWithoutReviews},
		{sanity.ContentCountsByType, &gaps.ContentCounts},
		{sanity.ExistingUseCaseSlugs, &gaps.ExistingUseCaseSlugs},
		{sanity.ExistingReviewSlugs, &gaps.ExistingReviewSlugs},
		{sanity.ExistingComparisonSlugs, &gaps.ExistingComparisonSlugs},
	}
	for _, q := range queries {
		if err := a.Store.QueryInto(ctx, q.groq, nil, q.out); err != nil {
			slog.Warn("could not query content store for gaps, using catalog data only", "error", err)
			return emptyGaps()
		}
	}
	return gaps
}

// researchResponse is the JSON contract with the model
type researchResponse struct {
	Briefs []struct {
		Topic            string   `json:"topic"`
		ContentType      string   `json:"content_type"`
		Domain           string   `json:"domain"`
		TargetProduct    string   `json:"target_product"`
		Keywords         []string `json:"keywords"`
		GapReason        string   `json:"gap_reason"`
		RelevantProducts []string `json:"relevant_products"`
	} `json:"briefs"`
}

// productSummary is the trimmed catalog view sent to the model
type productSummary struct {
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	UseCase     string `json:"use_case"`
	Mechanism   string `json:"mechanism"`
	ASIN        string `json:"asin"`
}

// Run produces research briefs for the given domain filter. Returns the
// briefs and total tokens used.
func (a *Research) Run(ctx context.Context, domainFilter string, dryRun bool) ([]model.ResearchBrief, int, error) {
	gaps := a.gatherGaps(ctx, dryRun)

	summaries := make([]productSummary, 0, a.Catalog.Len())
	for _, p := range a.Catalog.All() {
		summaries = append(summaries, productSummary{
			ProductName: p.ProductName,
			Brand:       p.Brand,
			Category:    p.Category,
			UseCase:     p.UseCase,
			Mechanism:   p.Mechanism,
			ASIN:        p.ASIN,
		})
	}

	userPrompt := fmt.Sprintf(`Here is the current content inventory and available product data.

## Content Gaps from CMS
Products without reviews: %s
Content counts: %s
Existing use-case slugs: %s
Existing review slugs: %s
Existing comparison slugs: %s

## Available Products
%s

## Domain filter
Only suggest content for domain: %s
(If "all", suggest across all domains.)

## Task
Analyze the gaps and suggest exactly %d high-priority articles to create. For each article provide:
- topic: the article title
- content_type: one of "review", "best-for", "comparison", "faq"
- domain: one of "joint_pain", "muscle_pain", "product_review"
- target_product: product name if a review, otherwise null
- keywords: list of 3-5 SEO keywords
- gap_reason: why this content is needed (1 sentence)
- relevant_products: list of product_name strings (5-8) to include

Return a JSON object with a single key "briefs" containing the array of %d objects.`,
		mustJSON(limitSlice(gaps.ProductsWithoutReviews, 20)),
		mustJSON(gaps.ContentCounts),
		mustJSON(limitSlice(gaps.ExistingUseCaseSlugs, 30)),
		mustJSON(limitSlice(gaps.ExistingReviewSlugs, 30)),
		mustJSON(limitSlice(gaps.ExistingComparisonSlugs, 30)),
		mustJSON(summaries),
		domainFilter, briefsPerRun, briefsPerRun)

	system, err := loadPrompt("research_system.txt")
	if err != nil {
		return nil, 0, err
	}

	var parsed researchResponse
	resp, err := a.Gateway.CallJSON(ctx, llm.Request{
		System: system,
		User:   userPrompt,
		Model:  a.Model,
	}, &parsed)
	if err != nil {
		return nil, 0, fmt.Errorf("research agent: %w", err)
	}

	// Enrich each brief by resolving product names against the catalog.
	// Unmatched names are dropped, not fatal: the model sometimes invents
	// near-miss names and the writer works fine with fewer products.
	briefs := make([]model.ResearchBrief, 0, len(parsed.Briefs))
	totalDropped := 0
	for _, rb := range parsed.Briefs {
		relevant, dropped := a.Catalog.Resolve(rb.RelevantProducts)
		totalDropped += dropped
		briefs = append(briefs, model.ResearchBrief{
			Topic:            rb.Topic,
			ContentType:      model.ContentType(rb.ContentType),
			Domain:           rb.Domain,
			TargetProduct:    rb.TargetProduct,
			Keywords:         rb.Keywords,
			GapReason:        rb.GapReason,
			RelevantProducts: relevant,
		})
	}
	if totalDropped > 0 {
		slog.Info("research agent dropped unmatched product names", "dropped", totalDropped)
	}

	slog.Info("research agent produced briefs", "briefs", len(briefs), "tokens", resp.TotalTokens())
	return briefs, resp.TotalTokens(), nil
}

// mustJSON renders v as indented JSON for prompt interpolation
func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// limitSlice caps prompt payload size for long inventories
func limitSlice[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
