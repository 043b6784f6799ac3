package pipeline

import (
	"regexp"
	"strings"
)

var (
	// \s in RE2 misses the vertical tab, the information separators and NEL
	disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\x1c-\x1f\x85\p{Z}.,!?\-:;()]`)
	whitespaceRuns  = regexp.MustCompile(`[\s\v\x1c-\x1f\x85\p{Z}]+`)
	periodRuns      = regexp.MustCompile(`\.{2,}`)
)

// CleanText normalizes extracted text.
// Word characters, whitespace and . , ! ? - : ; ( ) are kept, everything else
// is removed. Whitespace runs become a single space and runs of periods a
// single period. Cleaning an already cleaned text returns it unchanged.
func CleanText(text string) string {
	text = disallowedChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = periodRuns.ReplaceAllString(text, ".")
	return strings.TrimSpace(text)
}
