package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/topicalmd/contentpipe/internal/llm"
	"github.com/topicalmd/contentpipe/internal/model"
)

// editorTokenFloor is the minimum max_tokens for an editor call; the
// model echoes the full corrected article inside its JSON response.
const editorTokenFloor = 12000

// Editor scores article quality, polishes the text, and decides between
// publish and draft.
type Editor struct {
	Gateway          Gateway
	Model            string
	PublishThreshold int
}

// editorResponse is the JSON contract with the model
type editorResponse struct {
	FinalMarkdown   string               `json:"final_markdown"`
	ConfidenceScore int                  `json:"confidence_score"`
	PublishDecision string               `json:"publish_decision"`
	ScoreBreakdown  model.ScoreBreakdown `json:"score_breakdown"`
	IssuesFound     []string             `json:"issues_found"`
	CorrectionsMade []string             `json:"corrections_made"`
}

// Run reviews one article. The validator's issue list is folded into the
// prompt as already-known defects so the model doesn't burn effort
// rediscovering them. Returns the edit result and total tokens used.
func (a *Editor) Run(ctx context.Context, brief model.ResearchBrief, outline model.ArticleOutline, article model.Article, validationIssues []string) (model.EditResult, int, error) {
	sectionHeadings := make([]string, 0, len(outline.Sections))
	for _, s := range outline.Sections {
		sectionHeadings = append(sectionHeadings, s.Heading)
	}

	validationSection := ""
	if len(validationIssues) > 0 {
		var b strings.Builder
		for _, issue := range validationIssues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		validationSection = fmt.Sprintf(`
## Pre-Editor Validation Issues (already detected)
The format validator flagged these issues before your review. Factor these into your scoring and fix them if possible:
%s`, b.String())
	}

	userPrompt := fmt.Sprintf(`Review and score the following article.

## Expected Outline Sections
%s

## Article Metadata
- Title: %s
- Content Type: %s
- Target Words: %d
- Actual Words: %d
- SEO Keywords: %s
%s
## Article Content
%s

## Task
1. Score the article on 5 axes (each 0-20, total 0-100):
   - medical_accuracy: No fabricated claims, correct mechanisms, cites real sources
   - structure_compliance: All outline sections present, proper heading hierarchy
   - eeat_signals: Demonstrates expertise, cites authoritative sources, first-hand knowledge signals
   - readability: Scannable, clear language, good formatting, short paragraphs
   - seo_optimization: Keywords used naturally, featured snippet targeting, meta-friendly structure

2. List specific issues found (array of strings)

3. If the total score is below %d and issues are fixable:
   - Make corrections directly in the markdown
   - List corrections made

4. Return the (possibly corrected) article

Return JSON with keys:
- final_markdown: string (the full article, corrected if needed)
- confidence_score: integer 0-100
- publish_decision: "publish" if score >= %d, else "draft"
- score_breakdown: object with the 5 axes
- issues_found: array of strings
- corrections_made: array of strings (empty if no corrections)`,
		mustJSON(sectionHeadings), outline.Title, outline.ContentType,
		outline.TotalTargetWords, article.WordCount,
		strings.Join(brief.Keywords, ", "), validationSection,
		article.Markdown, a.PublishThreshold, a.PublishThreshold)

	system, err := loadPrompt("editor_system.txt")
	if err != nil {
		return model.EditResult{}, 0, err
	}

	maxTokens := article.WordCount * 3
	if maxTokens < editorTokenFloor {
		maxTokens = editorTokenFloor
	}

	var parsed editorResponse
	resp, err := a.Gateway.CallJSON(ctx, llm.Request{
		System:    system,
		User:      userPrompt,
		Model:     a.Model,
		MaxTokens: maxTokens,
	}, &parsed)
	if err != nil {
		return model.EditResult{}, 0, fmt.Errorf("editor agent: %w", err)
	}

	// The score is always the sum of the axes, not the model's stated total.
	score := parsed.ScoreBreakdown.Sum()
	if score != parsed.ConfidenceScore {
		slog.Warn("editor score mismatch, using recalculated sum",
			"stated", parsed.ConfidenceScore, "calculated", score)
	}

	decision := model.DecisionDraft
	if score >= a.PublishThreshold {
		decision = model.DecisionPublish
	}

	finalMarkdown := parsed.FinalMarkdown
	if finalMarkdown == "" {
		finalMarkdown = article.Markdown
	}

	edit := model.EditResult{
		FinalMarkdown:   finalMarkdown,
		ConfidenceScore: score,
		PublishDecision: decision,
		ScoreBreakdown:  parsed.ScoreBreakdown,
		IssuesFound:     parsed.IssuesFound,
		CorrectionsMade: parsed.CorrectionsMade,
		TokensUsed:      resp.TotalTokens(),
	}

	slog.Info("editor agent",
		"score", score, "decision", decision,
		"issues", len(edit.IssuesFound), "corrections", len(edit.CorrectionsMade))
	return edit, resp.TotalTokens(), nil
}
