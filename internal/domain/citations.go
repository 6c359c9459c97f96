package domain

import (
	"regexp"
	"strings"
)

var (
	bracketCitationPattern  = regexp.MustCompile(`[ \t]*【[^【】]*】`)
	footnoteCitationPattern = regexp.MustCompile(`[ \t]*\[\d+(?:-\d+)?\]`)
)

// StripCitations removes synthetic source markers such as 【4:0†source】
// and [1] that the assistant leaves in its replies.
func StripCitations(text string) string {
	if text == "" {
		return text
	}
	text = strings.TrimSpace(bracketCitationPattern.ReplaceAllString(text, ""))
	return strings.TrimSpace(footnoteCitationPattern.ReplaceAllString(text, ""))
}
