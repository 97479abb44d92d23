package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	trailingHeadingRe = regexp.MustCompile(`\n(#{1,4}\s+[^\n]*)\s*$`)
	blankRunsRe       = regexp.MustCompile(`\n{3,}`)
	headingSpacingRe  = regexp.MustCompile(`([^\n])\n(#{1,4}\s+)`)
)

// AutoFix repairs mechanical defects in markdown with pure string
// transforms: a trailing heading with nothing after it is removed, runs
// of three or more blank lines collapse to two, and a blank line is
// inserted between text and an immediately following heading. Idempotent:
// re-running it on its own output applies no further fixes. Returns the
// fixed text and a human-readable description of each fix.
func AutoFix(markdown string) (string, []string) {
	fixed := markdown
	var fixes []string

	if loc := trailingHeadingRe.FindStringSubmatchIndex(fixed); loc != nil {
		headingText := strings.TrimSpace(fixed[loc[2]:loc[3]])
		fixed = strings.TrimRight(fixed[:loc[0]], " \t\n") + "\n"
		fixes = append(fixes, fmt.Sprintf("Removed trailing empty heading: '%s'", headingText))
	}

	before := fixed
	fixed = blankRunsRe.ReplaceAllString(fixed, "\n\n")
	if fixed != before {
		fixes = append(fixes, "Collapsed excessive blank lines")
	}

	before = fixed
	fixed = headingSpacingRe.ReplaceAllString(fixed, "${1}\n\n${2}")
	if fixed != before {
		fixes = append(fixes, "Added missing blank lines before headings")
	}

	return fixed, fixes
}
