package model

import "strings"

// Article is the writer agent's output. The format validator may replace it
// with a repaired copy; instances are never mutated in place.
type Article struct {
	Markdown   string `json:"markdown"`
	WordCount  int    `json:"word_count"`
	TokensUsed int    `json:"tokens_used"`
}

// NewArticle builds an Article with the word count derived from the text.
// Token accounting is frozen at generation time, so repaired copies carry
// the original TokensUsed.
func NewArticle(markdown string, tokensUsed int) Article {
	return Article{
		Markdown:   markdown,
		WordCount:  CountWords(markdown),
		TokensUsed: tokensUsed,
	}
}

// CountWords counts whitespace-separated words in markdown text
func CountWords(text string) int {
	return len(strings.Fields(text))
}
