package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/topicalmd/contentpipe/internal/llm"
	"github.com/topicalmd/contentpipe/internal/model"
)

// Outline defaults applied when the model omits fields
const (
	defaultSectionLevel     = 2
	defaultSectionWordCount = 200
	defaultTotalTargetWords = 2000
)

// Outline turns a research brief into a section-by-section article skeleton
type Outline struct {
	Gateway Gateway
	Model   string
}

// outlineResponse is the JSON contract with the model
type outlineResponse struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Sections        []struct {
		Heading            string   `json:"heading"`
		Level              int      `json:"level"`
		KeyPoints          []string `json:"key_points"`
		TargetWordCount    int      `json:"target_word_count"`
		SourcesToCite      []string `json:"sources_to_cite"`
		AffiliatePlacement string   `json:"affiliate_placement"`
	} `json:"sections"`
	TotalTargetWords      int    `json:"total_target_words"`
	FeaturedSnippetTarget string `json:"featured_snippet_target"`
}

// Run produces an outline for one brief. Returns the outline and total
// tokens used. Slug and meta fields are defensively normalized to their
// format limits regardless of what the model returns.
func (a *Outline) Run(ctx context.Context, brief model.ResearchBrief) (model.ArticleOutline, int, error) {
	productNames := make([]string, 0, 8)
	for i, p := range brief.RelevantProducts {
		if i >= 8 {
			break
		}
		productNames = append(productNames, p.ProductName)
	}

	targetProduct := brief.TargetProduct
	if targetProduct == "" {
		targetProduct = "N/A (roundup article)"
	}

	userPrompt := fmt.Sprintf(`Create a detailed article outline for the following topic.

## Article Info
- Topic: %s
- Content Type: %s
- Domain: %s
- Target Product: %s
- SEO Keywords: %s
- Products to include: %s

## Task
Create a structured outline with:
1. title: SEO-friendly article title
2. slug: URL-friendly slug
3. meta_title: under %d chars with primary keyword
4. meta_description: under %d chars, compelling
5. content_type: "%s"
6. sections: array of section objects, each with:
   - heading: section title
   - level: 2 for main sections, 3 for subsections
   - key_points: 3-5 bullet points of what to cover
   - target_word_count: integer
   - sources_to_cite: relevant sources (Mayo Clinic, NIH, ACR, etc.)
   - affiliate_placement: where to place product CTAs (or null)
7. total_target_words: sum of section word counts (aim for 1500-2500 words)
8. featured_snippet_target: a question this article could rank for in a featured snippet

Return JSON with these exact keys.`,
		brief.Topic, brief.ContentType, brief.Domain, targetProduct,
		strings.Join(brief.Keywords, ", "), strings.Join(productNames, ", "),
		model.MaxMetaTitleLen, model.MaxMetaDescriptionLen, brief.ContentType)

	system, err := loadPrompt("outline_system.txt")
	if err != nil {
		return model.ArticleOutline{}, 0, err
	}

	var parsed outlineResponse
	resp, err := a.Gateway.CallJSON(ctx, llm.Request{
		System: system,
		User:   userPrompt,
		Model:  a.Model,
	}, &parsed)
	if err != nil {
		return model.ArticleOutline{}, 0, fmt.Errorf("outline agent: %w", err)
	}

	sections := make([]model.OutlineSection, 0, len(parsed.Sections))
	for _, s := range parsed.Sections {
		level := s.Level
		if level == 0 {
			level = defaultSectionLevel
		}
		wordCount := s.TargetWordCount
		if wordCount == 0 {
			wordCount = defaultSectionWordCount
		}
		sections = append(sections, model.OutlineSection{
			Heading:            s.Heading,
			Level:              level,
			KeyPoints:          s.KeyPoints,
			TargetWordCount:    wordCount,
			SourcesToCite:      s.SourcesToCite,
			AffiliatePlacement: s.AffiliatePlacement,
		})
	}

	title := parsed.Title
	if title == "" {
		title = brief.Topic
	}
	slug := parsed.Slug
	if slug == "" {
		slug = model.Slugify(brief.Topic)
	}
	metaTitle := parsed.MetaTitle
	if metaTitle == "" {
		metaTitle = title
	}
	totalWords := parsed.TotalTargetWords
	if totalWords == 0 {
		totalWords = defaultTotalTargetWords
	}

	outline := model.ArticleOutline{
		Title:                 title,
		Slug:                  slug,
		MetaTitle:             truncateRunes(metaTitle, model.MaxMetaTitleLen),
		MetaDescription:       truncateRunes(parsed.MetaDescription, model.MaxMetaDescriptionLen),
		ContentType:           brief.ContentType,
		Sections:              sections,
		TotalTargetWords:      totalWords,
		FeaturedSnippetTarget: parsed.FeaturedSnippetTarget,
	}

	slog.Info("outline agent",
		"title", outline.Title, "sections", len(sections), "target_words", outline.TotalTargetWords)
	return outline, resp.TotalTokens(), nil
}

// truncateRunes enforces a character limit without splitting a rune
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
