package model

// ContentType enumerates the article formats the pipeline can produce
type ContentType string

const (
	ContentTypeReview     ContentType = "review"
	ContentTypeBestFor    ContentType = "best-for"
	ContentTypeComparison ContentType = "comparison"
	ContentTypeFAQ        ContentType = "faq"
)

// Product is one entry from the affiliate product catalog
type Product struct {
	ProductName      string `json:"product_name"`
	Brand            string `json:"brand"`
	Category         string `json:"category,omitempty"`
	UseCase          string `json:"use_case,omitempty"`
	ActiveIngredient string `json:"active_ingredient,omitempty"`
	Mechanism        string `json:"mechanism,omitempty"`
	PriceRange       string `json:"price_range,omitempty"`
	Form             string `json:"form,omitempty"`
	Notes            string `json:"notes,omitempty"`
	ASIN             string `json:"asin,omitempty"`
	AffiliateURL     string `json:"affiliate_url,omitempty"`
}

// ResearchBrief is the research agent's output: one prioritized article idea.
// Immutable once created; consumed by the outline and writer agents.
type ResearchBrief struct {
	Topic            string      `json:"topic"`
	ContentType      ContentType `json:"content_type"`
	Domain           string      `json:"domain"`
	TargetProduct    string      `json:"target_product,omitempty"`
	Keywords         []string    `json:"keywords"`
	GapReason        string      `json:"gap_reason"`
	RelevantProducts []Product   `json:"relevant_products"`
}
