package convert

import (
	"strings"
	"testing"
)

// blockText concatenates a block's span texts
func blockText(b Block) string {
	var sb strings.Builder
	for _, s := range b.Children {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestToBlocksEmpty(t *testing.T) {
	blocks := ToBlocks("   \n\n  ")
	if blocks == nil || len(blocks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", blocks)
	}
}

func TestToBlocksHeadingLevels(t *testing.T) {
	blocks := ToBlocks("# Top\n\n## Section\n\n### Sub\n\n#### Deep\n")

	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(blocks))
	}
	wantStyles := []string{"h2", "h2", "h3", "h4"}
	for i, want := range wantStyles {
		if blocks[i].Style != want {
			t.Errorf("block %d: style %q, want %q", i, blocks[i].Style, want)
		}
	}
	if blockText(blocks[0]) != "Top" {
		t.Errorf("heading text: %q", blockText(blocks[0]))
	}
}

func TestToBlocksParagraphAccumulation(t *testing.T) {
	blocks := ToBlocks("First line\nsecond line.\n\nNew paragraph.\n")

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if got := blockText(blocks[0]); got != "First line second line." {
		t.Errorf("joined paragraph: %q", got)
	}
	if blocks[0].Style != "normal" {
		t.Errorf("style: %q", blocks[0].Style)
	}
}

func TestToBlocksListNesting(t *testing.T) {
	blocks := ToBlocks("- top item\n  - nested item\n1. first step\n")

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].ListItem != "bullet" || blocks[0].Level != 1 {
		t.Errorf("top item: %q level %d", blocks[0].ListItem, blocks[0].Level)
	}
	if blocks[1].ListItem != "bullet" || blocks[1].Level != 2 {
		t.Errorf("nested item: %q level %d", blocks[1].ListItem, blocks[1].Level)
	}
	if blocks[2].ListItem != "number" || blocks[2].Level != 1 {
		t.Errorf("numbered item: %q level %d", blocks[2].ListItem, blocks[2].Level)
	}
}

func TestToBlocksTableRun(t *testing.T) {
	markdown := "Intro text.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nAfter table.\n"
	blocks := ToBlocks(markdown)

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	table := blockText(blocks[1])
	if !strings.Contains(table, "| a | b |") || strings.Count(table, "\n") != 2 {
		t.Errorf("table block not joined as one run: %q", table)
	}
}

func TestToBlocksHeadingFlushesTable(t *testing.T) {
	blocks := ToBlocks("| a | b |\n| 1 | 2 |\n## Next\n")

	if len(blocks) != 2 {
		t.Fatalf("expected table block then heading, got %d blocks", len(blocks))
	}
	if blocks[1].Style != "h2" || blockText(blocks[1]) != "Next" {
		t.Errorf("heading block wrong: %+v", blocks[1])
	}
}

func TestToBlocksPseudoHeader(t *testing.T) {
	blocks := ToBlocks("**Key Takeaways**:\n\nBody text.\n")

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Style != "h3" || blockText(blocks[0]) != "Key Takeaways" {
		t.Errorf("pseudo header block: style=%q text=%q", blocks[0].Style, blockText(blocks[0]))
	}
}

func TestToBlocksBlockquoteAndRule(t *testing.T) {
	blocks := ToBlocks("> quoted wisdom\n\n---\n\nAfter the rule.\n")

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks (rule dropped), got %d", len(blocks))
	}
	if blocks[0].Style != "blockquote" || blockText(blocks[0]) != "quoted wisdom" {
		t.Errorf("blockquote block: %+v", blocks[0])
	}
}

func TestParseInlinePlainText(t *testing.T) {
	spans, markDefs := parseInline("nothing fancy here")

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != "nothing fancy here" || len(spans[0].Marks) != 0 {
		t.Errorf("plain span: %+v", spans[0])
	}
	if markDefs == nil || len(markDefs) != 0 {
		t.Errorf("markDefs should be empty non-nil, got %#v", markDefs)
	}
}

func TestParseInlineMixedMarks(t *testing.T) {
	spans, markDefs := parseInline("Use **bold** and *italic* and ***both*** please")

	var text strings.Builder
	for _, s := range spans {
		text.WriteString(s.Text)
	}
	if got := text.String(); got != "Use bold and italic and both please" {
		t.Errorf("concatenated text: %q", got)
	}
	if len(markDefs) != 0 {
		t.Errorf("no links expected, got %v", markDefs)
	}

	wantMarks := map[string][]string{
		"bold":   {"strong"},
		"italic": {"em"},
		"both":   {"strong", "em"},
	}
	for _, s := range spans {
		if want, ok := wantMarks[s.Text]; ok {
			if len(s.Marks) != len(want) {
				t.Errorf("span %q marks %v, want %v", s.Text, s.Marks, want)
			}
		}
	}
}

func TestParseInlineLink(t *testing.T) {
	spans, markDefs := parseInline("Read [the review](/review/biofreeze) today")

	if len(markDefs) != 1 {
		t.Fatalf("expected 1 markDef, got %d", len(markDefs))
	}
	if markDefs[0].Type != "link" || markDefs[0].Href != "/review/biofreeze" {
		t.Errorf("markDef: %+v", markDefs[0])
	}

	var linked *Span
	for i := range spans {
		if spans[i].Text == "the review" {
			linked = &spans[i]
		}
	}
	if linked == nil {
		t.Fatal("no span for link text")
	}
	if len(linked.Marks) != 1 || linked.Marks[0] != markDefs[0].Key {
		t.Errorf("link span marks %v, want [%s]", linked.Marks, markDefs[0].Key)
	}
}

func TestParseInlineLinkInsideBold(t *testing.T) {
	spans, markDefs := parseInline("**[Biofreeze](/review/biofreeze) is our pick**")

	if len(markDefs) != 1 {
		t.Fatalf("expected 1 markDef, got %d", len(markDefs))
	}

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %+v", spans)
	}
	link := spans[0]
	if link.Text != "Biofreeze" || len(link.Marks) != 2 {
		t.Errorf("link span should carry strong + link marks: %+v", link)
	}
	trailing := spans[1]
	if trailing.Text != " is our pick" || len(trailing.Marks) != 1 || trailing.Marks[0] != "strong" {
		t.Errorf("trailing span: %+v", trailing)
	}
}

func TestBlockKeysAreUnique(t *testing.T) {
	blocks := ToBlocks("# A\n\nText one.\n\nText two.\n")

	seen := map[string]bool{}
	for _, b := range blocks {
		if seen[b.Key] {
			t.Errorf("duplicate block key %q", b.Key)
		}
		seen[b.Key] = true
		for _, s := range b.Children {
			if seen[s.Key] {
				t.Errorf("duplicate span key %q", s.Key)
			}
			seen[s.Key] = true
		}
	}
}
