package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/topicalmd/contentpipe/internal/catalog"
	"github.com/topicalmd/contentpipe/internal/llm"
	"github.com/topicalmd/contentpipe/internal/model"
)

// cannedGateway answers every call with a fixed JSON payload and records
// the requests it saw.
type cannedGateway struct {
	content  string
	requests []llm.Request
}

func (g *cannedGateway) Call(ctx context.Context, req llm.Request) (*llm.Response, error) {
	g.requests = append(g.requests, req)
	return &llm.Response{Content: g.content, InputTokens: 50, OutputTokens: 50}, nil
}

func (g *cannedGateway) CallJSON(ctx context.Context, req llm.Request, out any) (*llm.Response, error) {
	req.JSONMode = true
	resp, err := g.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resp.Content), out); err != nil {
		return nil, err
	}
	return resp, nil
}

func TestResearchRunEnrichesBriefsFromCatalog(t *testing.T) {
	gw := &cannedGateway{content: `{
		"briefs": [{
			"topic": "Best menthol gels for knee pain",
			"content_type": "best-for",
			"domain": "joint_pain",
			"keywords": ["menthol gel", "knee pain"],
			"gap_reason": "no roundup exists",
			"relevant_products": ["Biofreeze Gel", "Unknown Product"]
		}]
	}`}
	products := catalog.New([]model.Product{
		{ProductName: "Biofreeze Gel", Brand: "Biofreeze", ASIN: "B000A"},
	})

	agent := &Research{Gateway: gw, Catalog: products, Model: "google/gemini-2.0-flash"}
	briefs, tokens, err := agent.Run(context.Background(), "all", true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if tokens != 100 {
		t.Errorf("tokens: %d", tokens)
	}
	if len(briefs) != 1 {
		t.Fatalf("briefs: %+v", briefs)
	}

	b := briefs[0]
	if b.ContentType != model.ContentTypeBestFor {
		t.Errorf("content type: %q", b.ContentType)
	}
	// "Unknown Product" is not in the catalog and gets dropped silently
	if len(b.RelevantProducts) != 1 || b.RelevantProducts[0].ASIN != "B000A" {
		t.Errorf("enriched products: %+v", b.RelevantProducts)
	}
}

func TestOutlineRunAppliesDefaultsAndLimits(t *testing.T) {
	longMeta := strings.Repeat("x", 100)
	gw := &cannedGateway{content: `{
		"title": "",
		"slug": "",
		"meta_title": "` + longMeta + `",
		"meta_description": "` + strings.Repeat("y", 200) + `",
		"sections": [{"heading": "Why It Works"}],
		"total_target_words": 0
	}`}

	agent := &Outline{Gateway: gw, Model: "google/gemini-2.0-flash"}
	brief := model.ResearchBrief{
		Topic:       "Capsaicin Cream for Nerve Pain",
		ContentType: model.ContentTypeBestFor,
		Domain:      "joint_pain",
	}

	outline, _, err := agent.Run(context.Background(), brief)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if outline.Title != brief.Topic {
		t.Errorf("empty title should fall back to topic, got %q", outline.Title)
	}
	if outline.Slug != "capsaicin-cream-for-nerve-pain" {
		t.Errorf("slug: %q", outline.Slug)
	}
	if len(outline.MetaTitle) != model.MaxMetaTitleLen {
		t.Errorf("meta title not truncated: %d chars", len(outline.MetaTitle))
	}
	if len(outline.MetaDescription) != model.MaxMetaDescriptionLen {
		t.Errorf("meta description not truncated: %d chars", len(outline.MetaDescription))
	}
	if outline.TotalTargetWords != defaultTotalTargetWords {
		t.Errorf("total words default: %d", outline.TotalTargetWords)
	}

	s := outline.Sections[0]
	if s.Level != defaultSectionLevel || s.TargetWordCount != defaultSectionWordCount {
		t.Errorf("section defaults: %+v", s)
	}
}

func TestWriterRunSizesTokensToTarget(t *testing.T) {
	gw := &cannedGateway{content: "# Article\n\nGenerated body text here.\n"}
	agent := &Writer{Gateway: gw, Model: "anthropic/claude-sonnet-4-5-20250929"}

	brief := model.ResearchBrief{Topic: "Test", ContentType: model.ContentTypeBestFor, Domain: "joint_pain"}
	outline := model.ArticleOutline{Title: "Test", TotalTargetWords: 3000}

	article, _, err := agent.Run(context.Background(), brief, outline, true)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if article.WordCount != model.CountWords(article.Markdown) {
		t.Errorf("word count: %d", article.WordCount)
	}

	// 1.5 * 3000 + 500 = 5000, above the floor
	if got := gw.requests[0].MaxTokens; got != 5000 {
		t.Errorf("max tokens: %d", got)
	}
}

func TestWriterRunTokenFloor(t *testing.T) {
	gw := &cannedGateway{content: "Short body.\n"}
	agent := &Writer{Gateway: gw, Model: "anthropic/claude-sonnet-4-5-20250929"}

	brief := model.ResearchBrief{Topic: "Test", ContentType: model.ContentTypeBestFor, Domain: "joint_pain"}
	outline := model.ArticleOutline{Title: "Test", TotalTargetWords: 500}

	if _, _, err := agent.Run(context.Background(), brief, outline, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 1.5 * 500 + 500 = 1250, floored
	if got := gw.requests[0].MaxTokens; got != writerTokenFloor {
		t.Errorf("max tokens: %d, want floor %d", got, writerTokenFloor)
	}
}

func TestEditorRecomputesScoreFromBreakdown(t *testing.T) {
	// Stated confidence contradicts the breakdown; the sum wins.
	gw := &cannedGateway{content: `{
		"final_markdown": "# Edited\n\nPolished text.\n",
		"confidence_score": 95,
		"publish_decision": "publish",
		"score_breakdown": {
			"medical_accuracy": 15,
			"structure_compliance": 15,
			"eeat_signals": 15,
			"readability": 15,
			"seo_optimization": 15
		},
		"issues_found": ["one citation missing"],
		"corrections_made": []
	}`}

	agent := &Editor{Gateway: gw, Model: "anthropic/claude-sonnet-4-5-20250929", PublishThreshold: 80}
	article := model.NewArticle("# Draft\n\nOriginal text.\n", 900)

	edit, tokens, err := agent.Run(context.Background(), model.ResearchBrief{}, model.ArticleOutline{}, article, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if tokens != 100 {
		t.Errorf("tokens: %d", tokens)
	}
	if edit.ConfidenceScore != 75 {
		t.Errorf("score should be the breakdown sum 75, got %d", edit.ConfidenceScore)
	}
	if edit.PublishDecision != model.DecisionDraft {
		t.Errorf("75 < threshold 80 must draft, got %q", edit.PublishDecision)
	}
}

func TestEditorPublishesAtThreshold(t *testing.T) {
	gw := &cannedGateway{content: `{
		"final_markdown": "",
		"confidence_score": 0,
		"publish_decision": "draft",
		"score_breakdown": {
			"medical_accuracy": 16,
			"structure_compliance": 16,
			"eeat_signals": 16,
			"readability": 16,
			"seo_optimization": 16
		},
		"issues_found": [],
		"corrections_made": []
	}`}

	agent := &Editor{Gateway: gw, Model: "anthropic/claude-sonnet-4-5-20250929", PublishThreshold: 80}
	article := model.NewArticle("# Draft\n\nOriginal text.\n", 900)

	edit, _, err := agent.Run(context.Background(), model.ResearchBrief{}, model.ArticleOutline{}, article, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if edit.ConfidenceScore != 80 || edit.PublishDecision != model.DecisionPublish {
		t.Errorf("score 80 at threshold 80 must publish, got %d/%q", edit.ConfidenceScore, edit.PublishDecision)
	}
	if edit.FinalMarkdown != article.Markdown {
		t.Errorf("empty final markdown should fall back to the input article")
	}
}

func TestEditorFoldsValidationIssuesIntoPrompt(t *testing.T) {
	gw := &cannedGateway{content: `{
		"final_markdown": "x",
		"score_breakdown": {"medical_accuracy": 20, "structure_compliance": 20, "eeat_signals": 20, "readability": 20, "seo_optimization": 20}
	}`}

	agent := &Editor{Gateway: gw, Model: "anthropic/claude-sonnet-4-5-20250929", PublishThreshold: 80}
	article := model.NewArticle("# Draft\n\nText.\n", 100)
	issues := []string{"Missing outline section: 'FAQ'"}

	if _, _, err := agent.Run(context.Background(), model.ResearchBrief{}, model.ArticleOutline{}, article, issues); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(gw.requests[0].User, "Missing outline section: 'FAQ'") {
		t.Error("validation issue not folded into the editor prompt")
	}
	if !strings.Contains(gw.requests[0].User, "Pre-Editor Validation Issues") {
		t.Error("validation section header missing from prompt")
	}
}

func TestEditorTokenFloor(t *testing.T) {
	gw := &cannedGateway{content: `{
		"final_markdown": "x",
		"score_breakdown": {"medical_accuracy": 20, "structure_compliance": 20, "eeat_signals": 20, "readability": 20, "seo_optimization": 20}
	}`}

	agent := &Editor{Gateway: gw, Model: "anthropic/claude-sonnet-4-5-20250929", PublishThreshold: 80}
	article := model.NewArticle("tiny", 10)

	if _, _, err := agent.Run(context.Background(), model.ResearchBrief{}, model.ArticleOutline{}, article, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := gw.requests[0].MaxTokens; got != editorTokenFloor {
		t.Errorf("max tokens: %d, want floor %d", got, editorTokenFloor)
	}
}

func TestBuildInternalLinks(t *testing.T) {
	products := []model.Product{
		{ProductName: "Biofreeze Gel"},
		{ProductName: "Tiger Balm"},
	}
	reviews := []existingReview{
		{Slug: "biofreeze-gel-review", Title: "Biofreeze Review", ProductName: "Biofreeze Gel"},
	}

	links := buildInternalLinks(products, reviews)

	if !strings.Contains(links, "(/review/biofreeze-gel-review) (review page)") {
		t.Errorf("reviewed product should link to its review page:\n%s", links)
	}
	if !strings.Contains(links, "(/review/tiger-balm) (product page)") {
		t.Errorf("unreviewed product should fall back to the product page pattern:\n%s", links)
	}
}
