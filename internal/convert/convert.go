// Package convert turns flat markdown into Sanity Portable Text blocks.
//
// Single-pass and line-oriented: consecutive plain lines accumulate into
// one paragraph block, consecutive pipe-led lines into one table block,
// and every other construct (heading, list item, blockquote, rule) flushes
// the open buffers. The dialect is deliberately the one LLMs emit, pseudo
// bold-colon headers included, not full CommonMark.
package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Block is one Portable Text block
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key"`
	Style    string    `json:"style"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
}

// Span is one run of text inside a block with uniform formatting marks
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// MarkDef is a link annotation referenced by span marks
type MarkDef struct {
	Type string `json:"_type"`
	Key  string `json:"_key"`
	Href string `json:"href"`
}

// newKey generates a short unique Sanity _key
func newKey(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s-%x", prefix, u[:4])
}

var (
	headingRe     = regexp.MustCompile(`^(#{1,4})\s+(.+)$`)
	headingTailRe = regexp.MustCompile(`\s*#+\s*$`)
	blockquoteRe  = regexp.MustCompile(`^>\s*(.*)$`)
	bulletRe      = regexp.MustCompile(`^(\s*)([-*])\s+(.+)$`)
	numberedRe    = regexp.MustCompile(`^(\s*)\d+\.\s+(.+)$`)
	hrRe          = regexp.MustCompile(`^\s*[-*_]{3,}\s*$`)
	pseudoHeadRe  = regexp.MustCompile(`^\*\*([^*]+)\*\*:?\s*$`)
)

// makeBlock builds one block, running the inline parser over text
func makeBlock(style, text, listItem string, level int) Block {
	spans, markDefs := parseInline(text)
	b := Block{
		Type:     "block",
		Key:      newKey("b"),
		Style:    style,
		Children: spans,
		MarkDefs: markDefs,
	}
	if listItem != "" {
		b.ListItem = listItem
		if level < 1 {
			level = 1
		}
		b.Level = level
	}
	return b
}

// ToBlocks converts a markdown string into an ordered list of blocks
func ToBlocks(markdown string) []Block {
	if strings.TrimSpace(markdown) == "" {
		return []Block{}
	}

	var blocks []Block
	var paragraphBuf []string
	var tableBuf []string

	flushParagraph := func() {
		if len(paragraphBuf) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(paragraphBuf, " "))
		if text != "" {
			blocks = append(blocks, makeBlock("normal", text, "", 0))
		}
		paragraphBuf = paragraphBuf[:0]
	}

	flushTable := func() {
		if len(tableBuf) == 0 {
			return
		}
		// One block per table run; the frontend renders it as HTML.
		blocks = append(blocks, makeBlock("normal", strings.Join(tableBuf, "\n"), "", 0))
		tableBuf = tableBuf[:0]
	}

	for _, line := range strings.Split(markdown, "\n") {
		stripped := strings.TrimSpace(line)

		if stripped == "" {
			flushTable()
			flushParagraph()
			continue
		}

		if m := headingRe.FindStringSubmatch(stripped); m != nil {
			flushTable()
			flushParagraph()
			level := len(m[1])
			text := headingTailRe.ReplaceAllString(strings.TrimSpace(m[2]), "")
			style := fmt.Sprintf("h%d", level)
			if level < 2 {
				style = "h2"
			}
			blocks = append(blocks, makeBlock(style, text, "", 0))
			continue
		}

		if m := blockquoteRe.FindStringSubmatch(stripped); m != nil {
			flushTable()
			flushParagraph()
			blocks = append(blocks, makeBlock("blockquote", strings.TrimSpace(m[1]), "", 0))
			continue
		}

		// List matching runs against the unstripped line: leading
		// whitespace carries the nesting level (two spaces per level).
		trimRight := strings.TrimRight(line, " \t")
		if m := bulletRe.FindStringSubmatch(trimRight); m != nil {
			flushTable()
			flushParagraph()
			level := 1 + len(m[1])/2
			blocks = append(blocks, makeBlock("normal", strings.TrimSpace(m[3]), "bullet", level))
			continue
		}
		if m := numberedRe.FindStringSubmatch(trimRight); m != nil {
			flushTable()
			flushParagraph()
			level := 1 + len(m[1])/2
			blocks = append(blocks, makeBlock("normal", strings.TrimSpace(m[2]), "number", level))
			continue
		}

		if strings.HasPrefix(stripped, "|") {
			flushParagraph()
			tableBuf = append(tableBuf, stripped)
			continue
		}
		// A non-table line ends any open table run.
		flushTable()

		if hrRe.MatchString(stripped) {
			flushParagraph()
			continue
		}

		// Pseudo-header: a line that is only bold text with an optional
		// trailing colon. LLMs often emit these instead of ###.
		if m := pseudoHeadRe.FindStringSubmatch(stripped); m != nil {
			flushParagraph()
			blocks = append(blocks, makeBlock("h3", strings.TrimSpace(m[1]), "", 0))
			continue
		}

		paragraphBuf = append(paragraphBuf, stripped)
	}

	flushTable()
	flushParagraph()

	return blocks
}
