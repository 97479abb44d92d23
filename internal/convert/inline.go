package convert

import "regexp"

// inlineRe tokenizes inline formatting in priority order: links first,
// then bold-italic, bold, italic. Group numbering mirrors the alternation.
var inlineRe = regexp.MustCompile(
	`(\[([^\]]+)\]\(([^)]+)\))` + // 1: [text](url), 2: text, 3: url
		`|(\*\*\*(.+?)\*\*\*)` + // 4: ***bold italic***, 5: text
		`|(\*\*(.+?)\*\*)` + // 6: **bold**, 7: text
		`|(\*(.+?)\*)`, // 8: *italic*, 9: text
)

// embeddedLinkRe matches a link that is the entire leading content of a
// bold or italic span, e.g. **[name](/review/name), with a note**.
var embeddedLinkRe = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)(.*)$`)

// parseInline splits text into formatted spans plus the link mark
// definitions they reference. Text with no recognized markers yields
// exactly one plain span; the span list is never empty.
func parseInline(text string) ([]Span, []MarkDef) {
	spans := []Span{}
	markDefs := []MarkDef{}

	plainSpan := func(s string) Span {
		return Span{Type: "span", Key: newKey("s"), Text: s, Marks: []string{}}
	}
	markedSpan := func(s string, marks ...string) Span {
		return Span{Type: "span", Key: newKey("s"), Text: s, Marks: marks}
	}
	addLink := func(href string) string {
		key := newKey("ln")
		markDefs = append(markDefs, MarkDef{Type: "link", Key: key, Href: href})
		return key
	}

	// emitStyled handles the inner text of a bold or italic span. A link
	// occupying the leading content carries both the style mark and the
	// link mark; any trailing text becomes a separate styled span.
	emitStyled := func(inner, styleMark string) {
		if m := embeddedLinkRe.FindStringSubmatch(inner); m != nil {
			linkKey := addLink(m[2])
			spans = append(spans, markedSpan(m[1], styleMark, linkKey))
			if m[3] != "" {
				spans = append(spans, markedSpan(m[3], styleMark))
			}
			return
		}
		spans = append(spans, markedSpan(inner, styleMark))
	}

	lastEnd := 0
	for _, m := range inlineRe.FindAllStringSubmatchIndex(text, -1) {
		start := m[0]
		if start > lastEnd {
			spans = append(spans, plainSpan(text[lastEnd:start]))
		}

		group := func(i int) (string, bool) {
			if m[2*i] < 0 {
				return "", false
			}
			return text[m[2*i]:m[2*i+1]], true
		}

		switch {
		case m[2] >= 0: // link
			linkText, _ := group(2)
			href, _ := group(3)
			spans = append(spans, markedSpan(linkText, addLink(href)))
		case m[8] >= 0: // bold italic
			inner, _ := group(5)
			spans = append(spans, markedSpan(inner, "strong", "em"))
		case m[12] >= 0: // bold
			inner, _ := group(7)
			emitStyled(inner, "strong")
		case m[16] >= 0: // italic
			inner, _ := group(9)
			emitStyled(inner, "em")
		}

		lastEnd = m[1]
	}

	if lastEnd < len(text) {
		spans = append(spans, plainSpan(text[lastEnd:]))
	}

	if len(spans) == 0 {
		spans = append(spans, plainSpan(text))
	}

	return spans, markDefs
}
