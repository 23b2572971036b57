// Package interpret turns raw model output into MovePilot's structured chat
// result.
//
// This file normalizes raw reply text before any classification runs.
package interpret

import (
	"regexp"
	"strings"
)

var (
	tagRe         = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	headerRe      = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	boldRe        = regexp.MustCompile(`\*\*+`)
	bangRunRe     = regexp.MustCompile(`!{2,}`)
	questionRunRe = regexp.MustCompile(`\?{2,}`)
	dotRunRe      = regexp.MustCompile(`\.{4,}`)
	spaceRunRe    = regexp.MustCompile(`[ \t]{2,}`)
	newlineRunRe  = regexp.MustCompile(`\n{3,}`)
)

// Clean trims the reply, strips stray markup, and collapses repeated
// punctuation and whitespace. Ellipses survive; longer dot runs do not.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = tagRe.ReplaceAllString(s, "")
	s = headerRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "")
	s = bangRunRe.ReplaceAllString(s, "!")
	s = questionRunRe.ReplaceAllString(s, "?")
	s = dotRunRe.ReplaceAllString(s, "...")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = newlineRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
