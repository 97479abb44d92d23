// Package validate runs structural checks over generated markdown between
// the writer and editor stages. No LLM calls, just string analysis that
// catches mechanical defects before they waste an expensive editor call,
// auto-fixing what it can.
package validate

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/topicalmd/contentpipe/internal/model"
)

// DefaultMaxLenientIssues is the pass threshold: minor flags (one bare
// URL, a slightly short section) should not fail a draft outright.
const DefaultMaxLenientIssues = 3

// Word-count ratio thresholds against the outline target
const (
	criticalWordRatio = 0.70
	minimumWordRatio  = 0.85
)

// Report is the validator's findings for one article. Ephemeral: it is
// logged and folded into the editor prompt, never persisted.
type Report struct {
	Issues          []string `json:"issues"`
	FixesApplied    []string `json:"fixes_applied"`
	MissingSections []string `json:"missing_sections"`
	Pass            bool     `json:"pass"`
	IssueCount      int      `json:"issue_count"`
}

// Validator checks writer output against the outline's structural contract
type Validator struct {
	// MaxLenientIssues is the tunable non-critical issue budget
	MaxLenientIssues int
}

// NewValidator creates a validator with the default leniency threshold
func NewValidator() *Validator {
	return &Validator{MaxLenientIssues: DefaultMaxLenientIssues}
}

var (
	headingLineRe = regexp.MustCompile(`(?m)^(#{1,4})\s+(.+)$`)
	normalizeRe   = regexp.MustCompile(`[^a-z0-9 ]+`)
	brokenLinkRe  = regexp.MustCompile(`\[([^\]]*)\]\(([^)\n]*)(?:\n|$)`)
	bareURLRe     = regexp.MustCompile(`https?://[^\s)]+`)
	lastHeadingRe = regexp.MustCompile(`^#{1,4}\s+`)
)

// normalize lowercases, strips punctuation, and collapses whitespace for
// fuzzy heading matching.
func normalize(text string) string {
	s := normalizeRe.ReplaceAllString(strings.ToLower(text), "")
	return strings.Join(strings.Fields(s), " ")
}

type heading struct {
	level int
	text  string
	start int // byte offset of the heading line
	end   int
}

// extractHeadings finds all markdown headings with their offsets
func extractHeadings(markdown string) []heading {
	var headings []heading
	for _, m := range headingLineRe.FindAllStringSubmatchIndex(markdown, -1) {
		text := strings.TrimSpace(markdown[m[4]:m[5]])
		text = strings.TrimSpace(strings.TrimRight(text, "#"))
		headings = append(headings, heading{
			level: m[3] - m[2],
			text:  text,
			start: m[0],
			end:   m[1],
		})
	}
	return headings
}

// checkMissingSections verifies every outline section appears as a heading.
// A section counts as present when all its significant words (longer than
// three characters) co-occur in some article heading.
func checkMissingSections(markdown string, outline model.ArticleOutline) []string {
	var articleHeadings []string
	for _, h := range extractHeadings(markdown) {
		articleHeadings = append(articleHeadings, normalize(h.text))
	}

	var missing []string
	for _, section := range outline.Sections {
		expected := normalize(section.Heading)
		var keyWords []string
		for _, w := range strings.Fields(expected) {
			if len(w) > 3 {
				keyWords = append(keyWords, w)
			}
		}

		found := false
		if len(keyWords) == 0 {
			found = strings.Contains(strings.Join(articleHeadings, " "), expected)
		} else {
			for _, ah := range articleHeadings {
				all := true
				for _, kw := range keyWords {
					if !strings.Contains(ah, kw) {
						all = false
						break
					}
				}
				if all {
					found = true
					break
				}
			}
		}
		if !found {
			missing = append(missing, section.Heading)
		}
	}
	return missing
}

// checkEmptyHeadings finds headings with no content before the next
// heading or end of document.
func checkEmptyHeadings(markdown string) []string {
	var issues []string
	headings := extractHeadings(markdown)
	for i, h := range headings {
		sectionEnd := len(markdown)
		if i+1 < len(headings) {
			sectionEnd = headings[i+1].start
		}
		if strings.TrimSpace(markdown[h.end:sectionEnd]) == "" {
			issues = append(issues, fmt.Sprintf("Empty heading: '%s' has no content after it", h.text))
		}
	}
	return issues
}

// checkTables validates column counts within each contiguous table run.
// The first row of a run establishes the expected column count.
func checkTables(markdown string) []string {
	var issues []string
	inTable := false
	expectedCols := 0
	tableStartLine := 0

	for i, line := range strings.Split(markdown, "\n") {
		lineNo := i + 1
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "|") && strings.HasSuffix(stripped, "|") {
			cols := strings.Count(stripped, "|") - 1
			if !inTable {
				inTable = true
				expectedCols = cols
				tableStartLine = lineNo
			} else if cols != expectedCols {
				issues = append(issues, fmt.Sprintf(
					"Table column mismatch at line %d: expected %d cols, got %d (table started at line %d)",
					lineNo, expectedCols, cols, tableStartLine))
			}
		} else {
			inTable = false
		}
	}
	return issues
}

// checkLinks flags unterminated markdown links and bare URLs
func checkLinks(markdown string) []string {
	var issues []string

	for _, m := range brokenLinkRe.FindAllStringSubmatch(markdown, -1) {
		issues = append(issues, fmt.Sprintf("Possibly broken link: [%s](%s...", m[1], m[2]))
	}

	for _, m := range bareURLRe.FindAllStringIndex(markdown, -1) {
		url := markdown[m[0]:m[1]]
		// Skip URLs already wrapped in link syntax: an opening paren in
		// the two characters before the URL means it's a link target.
		before := markdown[max(0, m[0]-2):m[0]]
		if !strings.Contains(before, "(") {
			issues = append(issues, fmt.Sprintf("Bare URL should be a markdown link: %s", truncate(url, 60)))
		}
	}
	return issues
}

// checkWordCount compares actual word count against the outline target
func checkWordCount(article model.Article, outline model.ArticleOutline) []string {
	target := outline.TotalTargetWords
	if target <= 0 {
		return nil
	}
	actual := article.WordCount
	ratio := float64(actual) / float64(target)

	switch {
	case ratio < criticalWordRatio:
		return []string{fmt.Sprintf(
			"CRITICAL: Word count %d is only %.0f%% of target %d — article is severely short",
			actual, ratio*100, target)}
	case ratio < minimumWordRatio:
		return []string{fmt.Sprintf(
			"Word count %d is %.0f%% of target %d — article is under minimum",
			actual, ratio*100, target)}
	}
	return nil
}

// terminalPunctuation are characters a complete final line may end with
const terminalPunctuation = `.!?*_)"'`

// checkAbruptEnding flags documents that stop mid-thought
func checkAbruptEnding(markdown string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(markdown), "\n") {
		if s := strings.TrimSpace(l); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return []string{"Article is empty"}
	}

	var issues []string
	lastLine := lines[len(lines)-1]

	if lastHeadingRe.MatchString(lastLine) {
		issues = append(issues, fmt.Sprintf("Article ends with a heading and no content: '%s'", lastLine))
	}

	if !strings.ContainsRune(terminalPunctuation, rune(lastLine[len(lastLine)-1])) &&
		!strings.HasSuffix(lastLine, "---") && !strings.HasSuffix(lastLine, "|") {
		issues = append(issues, fmt.Sprintf("Article may end mid-sentence: '...%s'", tail(lastLine, 60)))
	}

	lower := strings.ToLower(markdown)
	if !strings.Contains(lower, "disclaimer") && !strings.Contains(lower, "medical advice") {
		issues = append(issues, "Missing medical disclaimer at end of article")
	}
	return issues
}

// Run validates the writer's output against the outline and applies the
// auto-fix pass. When any fix changed the text it returns a new Article
// with a recomputed word count; token accounting is frozen at generation
// time and carried over unchanged.
func (v *Validator) Run(article model.Article, outline model.ArticleOutline) (model.Article, Report) {
	markdown := article.Markdown
	var allIssues []string

	missingSections := checkMissingSections(markdown, outline)
	for _, section := range missingSections {
		allIssues = append(allIssues, fmt.Sprintf("Missing outline section: '%s'", section))
	}

	allIssues = append(allIssues, checkEmptyHeadings(markdown)...)
	allIssues = append(allIssues, checkTables(markdown)...)
	allIssues = append(allIssues, checkLinks(markdown)...)
	allIssues = append(allIssues, checkWordCount(article, outline)...)
	allIssues = append(allIssues, checkAbruptEnding(markdown)...)

	fixedMarkdown, fixesApplied := AutoFix(markdown)

	fixedArticle := article
	if len(fixesApplied) > 0 {
		fixedArticle = model.Article{
			Markdown:   fixedMarkdown,
			WordCount:  model.CountWords(fixedMarkdown),
			TokensUsed: article.TokensUsed,
		}
	}

	critical := false
	for _, issue := range allIssues {
		if strings.Contains(issue, "CRITICAL") {
			critical = true
			break
		}
	}

	maxLenient := v.MaxLenientIssues
	if maxLenient == 0 {
		maxLenient = DefaultMaxLenientIssues
	}

	report := Report{
		Issues:          allIssues,
		FixesApplied:    fixesApplied,
		MissingSections: missingSections,
		Pass:            !critical && len(allIssues) <= maxLenient,
		IssueCount:      len(allIssues),
	}

	if len(allIssues) > 0 {
		slog.Info("format validator", "issues", len(allIssues), "auto_fixed", len(fixesApplied))
		for i, issue := range allIssues {
			if i >= 5 {
				break
			}
			slog.Info("  validator issue", "detail", issue)
		}
	} else {
		slog.Info("format validator: all checks passed")
	}

	return fixedArticle, report
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
