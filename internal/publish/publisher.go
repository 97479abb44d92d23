// Package publish builds content-store documents from edited articles and
// pushes them, as published or draft depending on the editor's score.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/topicalmd/contentpipe/internal/convert"
	"github.com/topicalmd/contentpipe/internal/model"
	"github.com/topicalmd/contentpipe/internal/sanity"
)

// nowFunc is swapped in tests for deterministic timestamps
var nowFunc = time.Now

// slugField is the content store's slug object shape
type slugField struct {
	Type    string `json:"_type"`
	Current string `json:"current"`
}

// reviewDoc is a single-product review
type reviewDoc struct {
	Type             string          `json:"_type"`
	ID               string          `json:"_id"`
	Title            string          `json:"title"`
	Slug             slugField       `json:"slug"`
	PublishedAt      string          `json:"publishedAt"`
	Excerpt          string          `json:"excerpt"`
	Rating           float64         `json:"rating"`
	GeneratedContent string          `json:"generatedContent"`
	SourceModel      string          `json:"sourceModel"`
	Content          []convert.Block `json:"content"`
	Pros             []string        `json:"pros"`
	Cons             []string        `json:"cons"`
	ConfidenceScore  int             `json:"confidenceScore"`
	PipelineVersion  string          `json:"pipelineVersion"`
	MainImage        *ImageRef       `json:"mainImage,omitempty"`
	Product          *reference      `json:"product,omitempty"`
}

// useCaseDoc is a best-for guide
type useCaseDoc struct {
	Type            string          `json:"_type"`
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Slug            slugField       `json:"slug"`
	PublishedAt     string          `json:"publishedAt"`
	Excerpt         string          `json:"excerpt"`
	MetaTitle       string          `json:"metaTitle"`
	MetaDescription string          `json:"metaDescription"`
	Author          string          `json:"author"`
	Tags            []string        `json:"tags"`
	Categories      []string        `json:"categories"`
	Introduction    []convert.Block `json:"introduction"`
	Content         []convert.Block `json:"content"`
	ConfidenceScore int             `json:"confidenceScore"`
	PipelineVersion string          `json:"pipelineVersion"`
	MainImage       *ImageRef       `json:"mainImage,omitempty"`
}

type comparisonDoc struct {
	Type            string          `json:"_type"`
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Slug            slugField       `json:"slug"`
	PublishedAt     string          `json:"publishedAt"`
	Excerpt         string          `json:"excerpt"`
	Introduction    []convert.Block `json:"introduction"`
	Content         []convert.Block `json:"content"`
	ConfidenceScore int             `json:"confidenceScore"`
	PipelineVersion string          `json:"pipelineVersion"`
	MainImage       *ImageRef       `json:"mainImage,omitempty"`
}

type faqDoc struct {
	Type            string          `json:"_type"`
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Slug            slugField       `json:"slug"`
	PublishedAt     string          `json:"publishedAt"`
	Excerpt         string          `json:"excerpt"`
	Answer          []convert.Block `json:"answer"`
	ConfidenceScore int             `json:"confidenceScore"`
	PipelineVersion string          `json:"pipelineVersion"`
}

// Publisher pushes finished articles to the content store
type Publisher struct {
	Store       *sanity.Client
	Images      *ImageAcquirer
	Threshold   int
	SourceModel string
}

// Publish builds the document for one article, acquires its image, and
// sends the mutation. The returned result carries the outcome either way;
// a failed push sets Success false with the error recorded.
func (p *Publisher) Publish(ctx context.Context, brief model.ResearchBrief, outline model.ArticleOutline, edit model.EditResult, dryRun bool) model.ItemResult {
	asin := ""
	if len(brief.RelevantProducts) > 0 {
		asin = brief.RelevantProducts[0].ASIN
	}
	imageRef := p.Images.Acquire(ctx, brief.Topic, brief.ContentType, asin, dryRun)

	var doc any
	var docID string
	switch brief.ContentType {
	case model.ContentTypeReview:
		d := p.buildReviewDoc(ctx, brief, outline, edit, imageRef, dryRun)
		doc, docID = d, d.ID
	case model.ContentTypeComparison:
		d := p.buildComparisonDoc(outline, edit, imageRef)
		doc, docID = d, d.ID
	case model.ContentTypeFAQ:
		d := p.buildFAQDoc(outline, edit)
		doc, docID, imageRef = d, d.ID, nil
	default:
		d := p.buildUseCaseDoc(brief, outline, edit, imageRef)
		doc, docID = d, d.ID
	}

	result := model.ItemResult{
		ID:          docID,
		Title:       outline.Title,
		ContentType: brief.ContentType,
		Score:       edit.ConfidenceScore,
		Decision:    edit.PublishDecision,
		HasImage:    imageRef != nil,
		Success:     true,
	}

	if dryRun {
		slog.Info("dry run, would publish",
			"type", brief.ContentType, "title", outline.Title,
			"score", edit.ConfidenceScore, "decision", edit.PublishDecision)
		return result
	}

	mutations := []sanity.Mutation{{"createOrReplace": doc}}
	if _, err := p.Store.Mutate(ctx, mutations, false); err != nil {
		slog.Error("publish failed", "title", outline.Title, "error", err)
		result.Success = false
		result.Error = err.Error()
		return result
	}

	slog.Info("published",
		"type", brief.ContentType, "title", outline.Title,
		"score", edit.ConfidenceScore, "decision", edit.PublishDecision)
	return result
}

// docID builds the deterministic document ID. Draft-decision documents go
// under the drafts. namespace so the store treats them as unpublished.
func (p *Publisher) docID(prefix, slug string, score int) string {
	id := fmt.Sprintf("%s-%s", prefix, slug)
	if score < p.Threshold {
		id = "drafts." + id
	}
	return id
}

func (p *Publisher) buildReviewDoc(ctx context.Context, brief model.ResearchBrief, outline model.ArticleOutline, edit model.EditResult, imageRef *ImageRef, dryRun bool) *reviewDoc {
	pros, cons := extractProsCons(edit.FinalMarkdown)

	doc := &reviewDoc{
		Type:             "review",
		ID:               p.docID("review", outline.Slug, edit.ConfidenceScore),
		Title:            outline.Title,
		Slug:             slugField{Type: "slug", Current: outline.Slug},
		PublishedAt:      nowFunc().UTC().Format(time.RFC3339),
		Excerpt:          extractExcerpt(edit.FinalMarkdown),
		Rating:           4.0,
		GeneratedContent: edit.FinalMarkdown,
		SourceModel:      p.SourceModel,
		Content:          convert.ToBlocks(edit.FinalMarkdown),
		Pros:             pros,
		Cons:             cons,
		ConfidenceScore:  edit.ConfidenceScore,
		PipelineVersion:  model.PipelineVersion,
		MainImage:        imageRef,
	}

	if brief.TargetProduct != "" {
		doc.Product = p.findProductRef(ctx, brief.TargetProduct, dryRun)
	}
	return doc
}

func (p *Publisher) buildUseCaseDoc(brief model.ResearchBrief, outline model.ArticleOutline, edit model.EditResult, imageRef *ImageRef) *useCaseDoc {
	tags := brief.Keywords
	if len(tags) > 5 {
		tags = tags[:5]
	}

	return &useCaseDoc{
		Type:            "useCase",
		ID:              p.docID("usecase", outline.Slug, edit.ConfidenceScore),
		Title:           outline.Title,
		Slug:            slugField{Type: "slug", Current: outline.Slug},
		PublishedAt:     nowFunc().UTC().Format(time.RFC3339),
		Excerpt:         extractExcerpt(edit.FinalMarkdown),
		MetaTitle:       outline.MetaTitle,
		MetaDescription: outline.MetaDescription,
		Author:          "TopicalMD Editorial Team",
		Tags:            tags,
		Categories:      []string{},
		Introduction:    convert.ToBlocks(introMarkdown(edit.FinalMarkdown)),
		Content:         convert.ToBlocks(edit.FinalMarkdown),
		ConfidenceScore: edit.ConfidenceScore,
		PipelineVersion: model.PipelineVersion,
		MainImage:       imageRef,
	}
}

func (p *Publisher) buildComparisonDoc(outline model.ArticleOutline, edit model.EditResult, imageRef *ImageRef) *comparisonDoc {
	return &comparisonDoc{
		Type:            "comparison",
		ID:              p.docID("comparison", outline.Slug, edit.ConfidenceScore),
		Title:           outline.Title,
		Slug:            slugField{Type: "slug", Current: outline.Slug},
		PublishedAt:     nowFunc().UTC().Format(time.RFC3339),
		Excerpt:         extractExcerpt(edit.FinalMarkdown),
		Introduction:    convert.ToBlocks(introMarkdown(edit.FinalMarkdown)),
		Content:         convert.ToBlocks(edit.FinalMarkdown),
		ConfidenceScore: edit.ConfidenceScore,
		PipelineVersion: model.PipelineVersion,
		MainImage:       imageRef,
	}
}

func (p *Publisher) buildFAQDoc(outline model.ArticleOutline, edit model.EditResult) *faqDoc {
	return &faqDoc{
		Type:            "faq",
		ID:              p.docID("faq", outline.Slug, edit.ConfidenceScore),
		Title:           outline.Title,
		Slug:            slugField{Type: "slug", Current: outline.Slug},
		PublishedAt:     nowFunc().UTC().Format(time.RFC3339),
		Excerpt:         extractExcerpt(edit.FinalMarkdown),
		Answer:          convert.ToBlocks(edit.FinalMarkdown),
		ConfidenceScore: edit.ConfidenceScore,
		PipelineVersion: model.PipelineVersion,
	}
}

// introMarkdown returns the first paragraph of the article
func introMarkdown(markdown string) string {
	intro, _, _ := strings.Cut(markdown, "\n\n")
	return intro
}

// findProductRef looks up a product document by name and returns a
// reference to it. Exact match is tried first, then a wildcard search on
// the first word of the name, which is usually the brand. Lookup failures
// leave the document without a product link.
func (p *Publisher) findProductRef(ctx context.Context, productName string, dryRun bool) *reference {
	if dryRun || productName == "" {
		return nil
	}

	var exact struct {
		ID string `json:"_id"`
	}
	err := p.Store.QueryInto(ctx, sanity.ProductByName, map[string]any{"name": productName}, &exact)
	if err == nil && exact.ID != "" {
		slog.Info("found product ref", "match", "exact", "product", productName, "id", exact.ID)
		return &reference{Type: "reference", Ref: exact.ID}
	}

	firstWord, _, _ := strings.Cut(productName, " ")
	if firstWord != "" {
		var matches []struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		}
		err = p.Store.QueryInto(ctx, sanity.ProductByNameContains, map[string]any{"term": firstWord + "*"}, &matches)
		if err == nil && len(matches) > 0 {
			slog.Info("found product ref", "match", "fuzzy", "product", productName,
				"id", matches[0].ID, "matched_name", matches[0].Name)
			return &reference{Type: "reference", Ref: matches[0].ID}
		}
	}

	if err != nil {
		slog.Warn("product lookup failed", "product", productName, "error", err)
	}
	return nil
}
