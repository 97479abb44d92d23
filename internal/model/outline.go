package model

// Format limits for search-facing metadata
const (
	MaxMetaTitleLen       = 60
	MaxMetaDescriptionLen = 160
)

// OutlineSection is one planned section of an article
type OutlineSection struct {
	Heading            string   `json:"heading"`
	Level              int      `json:"level"` // 2 = h2, 3 = h3
	KeyPoints          []string `json:"key_points"`
	TargetWordCount    int      `json:"target_word_count"`
	SourcesToCite      []string `json:"sources_to_cite"`
	AffiliatePlacement string   `json:"affiliate_placement,omitempty"`
}

// ArticleOutline is the outline agent's output. Read-only after creation;
// it defines the structural contract the format validator enforces.
type ArticleOutline struct {
	Title                 string           `json:"title"`
	Slug                  string           `json:"slug"`
	MetaTitle             string           `json:"meta_title"`
	MetaDescription       string           `json:"meta_description"`
	ContentType           ContentType      `json:"content_type"`
	Sections              []OutlineSection `json:"sections"`
	TotalTargetWords      int              `json:"total_target_words"`
	FeaturedSnippetTarget string           `json:"featured_snippet_target,omitempty"`
}
