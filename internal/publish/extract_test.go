package publish

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractExcerptFirstParagraph(t *testing.T) {
	markdown := "# Best Creams for Knee Pain\n\n" +
		"Topical creams offer targeted relief without systemic side effects.\n" +
		"They work within minutes of application.\n\n" +
		"A second paragraph that should not appear."

	got := extractExcerpt(markdown)
	want := "Topical creams offer targeted relief without systemic side effects. They work within minutes of application."
	if got != want {
		t.Errorf("excerpt = %q, want %q", got, want)
	}
}

func TestExtractExcerptSkipsStructuralLines(t *testing.T) {
	markdown := "## Heading\n\n" +
		"| Product | Price |\n" +
		"|---------|-------|\n" +
		"- a list item\n" +
		"1. a numbered item\n\n" +
		"The real opening paragraph."

	if got := extractExcerpt(markdown); got != "The real opening paragraph." {
		t.Errorf("excerpt = %q", got)
	}
}

func TestExtractExcerptStripsLinksAndMarks(t *testing.T) {
	markdown := "Our pick is [Biofreeze](https://example.com/biofreeze), a *menthol* gel."

	if got := extractExcerpt(markdown); got != "Our pick is Biofreeze, a menthol gel." {
		t.Errorf("excerpt = %q", got)
	}
}

func TestExtractExcerptTruncatesAtSentence(t *testing.T) {
	first := strings.Repeat("word ", 30) + "ends here. "
	markdown := first + strings.Repeat("filler ", 40)

	got := extractExcerpt(markdown)
	if !strings.HasSuffix(got, "ends here.") {
		t.Errorf("excerpt should end at sentence boundary, got %q", got)
	}
	if len(got) > maxExcerptLen {
		t.Errorf("excerpt exceeds cap: %d chars", len(got))
	}
}

func TestExtractExcerptTruncatesAtWordBoundary(t *testing.T) {
	markdown := strings.Repeat("unbroken ", 50)

	got := extractExcerpt(markdown)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt should carry ellipsis, got %q", got)
	}
	if strings.Contains(got, "unbrok...") {
		t.Errorf("excerpt cut mid-word: %q", got)
	}
	if len(got) > maxExcerptLen+3 {
		t.Errorf("excerpt exceeds cap: %d chars", len(got))
	}
}

func TestExtractExcerptEmpty(t *testing.T) {
	if got := extractExcerpt("# Only a heading\n\n## And another"); got != "" {
		t.Errorf("excerpt = %q, want empty", got)
	}
}

func TestExtractProsCons(t *testing.T) {
	markdown := strings.Join([]string{
		"## Overview",
		"Some intro text.",
		"",
		"## Pros",
		"- Fast-acting **relief**",
		"- [Affordable](https://example.com) price point",
		"",
		"## Cons",
		"- Strong menthol smell",
		"- Not for broken skin",
		"",
		"## Verdict",
		"- This bullet belongs to neither list",
	}, "\n")

	pros, cons := extractProsCons(markdown)

	wantPros := []string{"Fast-acting relief", "Affordable price point"}
	if !reflect.DeepEqual(pros, wantPros) {
		t.Errorf("pros = %v, want %v", pros, wantPros)
	}
	wantCons := []string{"Strong menthol smell", "Not for broken skin"}
	if !reflect.DeepEqual(cons, wantCons) {
		t.Errorf("cons = %v, want %v", cons, wantCons)
	}
}

func TestExtractProsConsBoldLabels(t *testing.T) {
	markdown := "**Pros:**\n- Works quickly\n\n**Cons:**\n- Pricey"

	pros, cons := extractProsCons(markdown)
	if len(pros) != 1 || pros[0] != "Works quickly" {
		t.Errorf("pros = %v", pros)
	}
	if len(cons) != 1 || cons[0] != "Pricey" {
		t.Errorf("cons = %v", cons)
	}
}

func TestExtractProsConsCapsAtEight(t *testing.T) {
	var lines []string
	lines = append(lines, "## Pros")
	for i := 0; i < 12; i++ {
		lines = append(lines, "- item")
	}
	pros, _ := extractProsCons(strings.Join(lines, "\n"))
	if len(pros) != 8 {
		t.Errorf("pros length = %d, want 8", len(pros))
	}
}

func TestExtractProsConsNone(t *testing.T) {
	pros, cons := extractProsCons("## Summary\n\nJust prose, no lists.")
	if pros != nil || cons != nil {
		t.Errorf("expected no items, got pros=%v cons=%v", pros, cons)
	}
}
