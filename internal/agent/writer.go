package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/topicalmd/contentpipe/internal/domain"
	"github.com/topicalmd/contentpipe/internal/llm"
	"github.com/topicalmd/contentpipe/internal/model"
	"github.com/topicalmd/contentpipe/internal/sanity"
)

// writerTokenFloor is the minimum max_tokens for a writer call
const writerTokenFloor = 4096

// Writer produces the full article markdown using the domain persona
// matching the brief.
type Writer struct {
	Gateway Gateway
	Store   *sanity.Client
	Model   string
}

// existingReview is one published review usable as an internal link target
type existingReview struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ProductName string `json:"productName"`
}

// buildInternalLinks renders the mandatory alternative-product link list.
// Products with a published review link to it; the rest fall back to the
// generic product-page link pattern.
func buildInternalLinks(products []model.Product, reviews []existingReview) string {
	reviewSlugs := make(map[string]string, len(reviews))
	for _, r := range reviews {
		if r.ProductName != "" && r.Slug != "" {
			reviewSlugs[strings.ToLower(r.ProductName)] = r.Slug
		}
	}

	var lines []string
	for _, p := range products {
		name := p.ProductName
		if slug, ok := reviewSlugs[strings.ToLower(name)]; ok {
			lines = append(lines, fmt.Sprintf("- %s: [%s](/review/%s) (review page)", name, name, slug))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: [%s](/review/%s) (product page)", name, name, model.Slugify(name)))
		}
	}
	return strings.Join(lines, "\n")
}

// writerProduct is the product detail view sent to the model
type writerProduct struct {
	ProductName      string `json:"product_name"`
	Brand            string `json:"brand"`
	ActiveIngredient string `json:"active_ingredient"`
	Mechanism        string `json:"mechanism"`
	PriceRange       string `json:"price_range"`
	Notes            string `json:"notes"`
	Form             string `json:"form"`
}

// Run writes the article for one brief and outline. Returns the article
// and total tokens used.
func (a *Writer) Run(ctx context.Context, brief model.ResearchBrief, outline model.ArticleOutline, dryRun bool) (model.Article, int, error) {
	persona := domain.ForName(brief.Domain)
	systemPrompt, err := loadPrompt(persona.PromptFile)
	if err != nil {
		return model.Article{}, 0, err
	}

	products := make([]writerProduct, 0, 8)
	for i, p := range brief.RelevantProducts {
		if i >= 8 {
			break
		}
		products = append(products, writerProduct{
			ProductName:      p.ProductName,
			Brand:            p.Brand,
			ActiveIngredient: p.ActiveIngredient,
			Mechanism:        p.Mechanism,
			PriceRange:       p.PriceRange,
			Notes:            p.Notes,
			Form:             p.Form,
		})
	}

	// Existing reviews feed the alternative-link list. A store failure
	// here just means generic product-page links.
	var reviews []existingReview
	if !dryRun && a.Store != nil {
		if err := a.Store.QueryInto(ctx, sanity.ExistingReviewsWithProducts, nil, &reviews); err != nil {
			slog.Warn("could not fetch existing reviews for linking", "error", err)
		}
	}
	internalLinks := buildInternalLinks(brief.RelevantProducts, reviews)

	targetWords := outline.TotalTargetWords
	snippetTarget := outline.FeaturedSnippetTarget
	if snippetTarget == "" {
		snippetTarget = "N/A"
	}

	userPrompt := fmt.Sprintf(`Write a COMPLETE %d-word article based on this outline. You MUST write at least %d words.

## Article Details
- Title: %s
- Content Type: %s
- MINIMUM Word Count: %d words (this is a hard requirement — articles under %d words will be rejected)
- SEO Keywords: %s
- Featured Snippet Target: %s

## Outline Sections
%s

## Product Data
%s

## MANDATORY — Alternative Product Links
In the Alternatives section, you MUST list these specific products by name and link each one using the EXACT markdown links below. Do NOT write generic alternatives — use THESE products with THESE links:
%s

Each alternative should be a bullet point with the linked product name in bold, followed by a brief 1-sentence description of why someone might choose it over the reviewed product.

## Instructions
- Write in standard Markdown (## for h2, ### for h3, - for bullets, **bold**)
- Follow the outline section by section — do not skip any section
- Hit each section's target word count (±10%%). The TOTAL article MUST reach %d words minimum.
- Include E-E-A-T signals: cite real medical sources, demonstrate expertise
- Place product recommendations naturally with brief mentions of key ingredients
- Add a medical disclaimer at the end
- Do NOT fabricate clinical trial data or statistics

## FORMATTING — Scannable & Structured (IMPORTANT)
- Use markdown tables for data-heavy content (ingredients, comparisons, price breakdowns)
- Use bullet lists for quick-reference items like pros/cons and application tips
- Use short paragraphs (2-3 sentences max) for narrative sections
- Readers scan before they read — make every section easy to skim

## CRITICAL — Completeness Rules (READ CAREFULLY)
1. You MUST write ALL sections from the outline. Count them and make sure every single one appears.
2. You MUST write a proper concluding section that summarizes key takeaways and encourages the reader to take action.
3. You MUST reach at least %d words. If your draft feels short, expand each section with more detail and practical advice.
4. The article must feel COMPLETE and FINISHED — a reader should never feel like the article was cut short.
5. NEVER stop writing before finishing the conclusion and medical disclaimer.

Return ONLY the markdown article — no JSON wrapper, no code fences.`,
		targetWords, targetWords, outline.Title, outline.ContentType,
		targetWords, int(float64(targetWords)*0.85),
		strings.Join(brief.Keywords, ", "), snippetTarget,
		mustJSON(outline.Sections), mustJSON(products), internalLinks,
		targetWords, targetWords)

	// Max tokens sized proportionally to the target with headroom,
	// never below the stage floor.
	maxTokens := int(float64(targetWords)*1.5) + 500
	if maxTokens < writerTokenFloor {
		maxTokens = writerTokenFloor
	}

	resp, err := a.Gateway.Call(ctx, llm.Request{
		System:    systemPrompt,
		User:      userPrompt,
		Model:     a.Model,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return model.Article{}, 0, fmt.Errorf("writer agent (%s): %w", persona.Name, err)
	}

	article := model.NewArticle(resp.Content, resp.TotalTokens())
	slog.Info("writer agent", "domain", persona.Name, "words", article.WordCount, "tokens", article.TokensUsed)
	return article, resp.TotalTokens(), nil
}
