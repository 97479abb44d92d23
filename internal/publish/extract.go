package publish

import (
	"regexp"
	"strings"
)

const maxExcerptLen = 300

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	inlineMarksRe  = regexp.MustCompile(`[*_#>]`)
	emphasisRe     = regexp.MustCompile(`[*_]`)
	numberedItemRe = regexp.MustCompile(`^\d+\.`)
	listPrefixRe   = regexp.MustCompile(`^[\s*\-]+`)
)

// stripMarkdownLinks rewrites [text](url) to just the text
func stripMarkdownLinks(text string) string {
	return markdownLinkRe.ReplaceAllString(text, "$1")
}

// extractExcerpt pulls the first body paragraph from markdown, capped at
// maxExcerptLen. The excerpt always ends at a sentence or at least a word
// boundary, never mid-word.
func extractExcerpt(markdown string) string {
	paragraph := ""
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "|") || strings.HasPrefix(line, "---") {
			if paragraph != "" {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || numberedItemRe.MatchString(line) {
			if paragraph != "" {
				break
			}
			continue
		}
		if paragraph != "" {
			paragraph += " " + line
		} else {
			paragraph = line
		}
	}
	if paragraph == "" {
		return ""
	}

	clean := stripMarkdownLinks(paragraph)
	clean = strings.TrimSpace(inlineMarksRe.ReplaceAllString(clean, ""))

	if len(clean) <= maxExcerptLen {
		return clean
	}

	truncated := clean[:maxExcerptLen]
	lastSentence := -1
	for _, end := range []string{". ", "? ", "! "} {
		if i := strings.LastIndex(truncated, end); i > lastSentence {
			lastSentence = i
		}
	}
	if lastSentence > 80 {
		return strings.TrimSpace(truncated[:lastSentence+1])
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 80 {
		return strings.TrimSpace(truncated[:lastSpace]) + "..."
	}
	return strings.TrimSpace(truncated) + "..."
}

// extractProsCons pulls pros/cons bullet items from review markdown as plain
// text. Section detection accepts both "## Pros" headings and "**Pros**"
// bold labels. Each list is capped at 8 items.
func extractProsCons(markdown string) (pros, cons []string) {
	const maxItems = 8
	current := ""
	for _, line := range strings.Split(markdown, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.Contains(lower, "pros") && (strings.Contains(line, "##") || strings.Contains(lower, "**")):
			current = "pros"
			continue
		case strings.Contains(lower, "cons") && (strings.Contains(line, "##") || strings.Contains(lower, "**")):
			current = "cons"
			continue
		case strings.HasPrefix(strings.TrimSpace(line), "#"):
			current = ""
			continue
		}

		item := strings.TrimSpace(listPrefixRe.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		item = stripMarkdownLinks(item)
		item = strings.TrimSpace(emphasisRe.ReplaceAllString(item, ""))
		switch current {
		case "pros":
			pros = append(pros, item)
		case "cons":
			cons = append(cons, item)
		}
	}
	if len(pros) > maxItems {
		pros = pros[:maxItems]
	}
	if len(cons) > maxItems {
		cons = cons[:maxItems]
	}
	return pros, cons
}
