package agent

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// loadPrompt returns an embedded system prompt by filename
func loadPrompt(filename string) (string, error) {
	data, err := promptFS.ReadFile("prompts/" + filename)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", filename, err)
	}
	return strings.TrimSpace(string(data)), nil
}
