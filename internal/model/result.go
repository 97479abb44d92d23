package model

// ItemResult summarizes the outcome of one article's trip through the
// pipeline, successful or not.
type ItemResult struct {
	ID             string      `json:"id,omitempty"`
	Title          string      `json:"title"`
	ContentType    ContentType `json:"type"`
	Score          int         `json:"score,omitempty"`
	Decision       string      `json:"decision,omitempty"`
	Success        bool        `json:"success"`
	HasImage       bool        `json:"has_image,omitempty"`
	Error          string      `json:"error,omitempty"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
}
