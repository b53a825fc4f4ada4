package searchkey

import (
	"strings"
	"unicode"
)

// unorderedWords are the article-like words broadcasters move to the end of
// a title ("Beautiful Day, A"). Collected from observed listings data.
var unorderedWords = map[string]struct{}{
	"the": {},
	"a":   {},
	"an":  {},
	"le":  {},
	"la":  {},
	"les": {},
	"il":  {},
	"el":  {},
	"los": {},
	"las": {},
	"o":   {},
	"os":  {},
	"as":  {},
	"um":  {},
	"uma": {},
}

// FixTitleOrder moves a trailing ", <article>" back to the front of the
// title: "Beautiful Day, A" becomes "A Beautiful Day". Only the segment
// after the last comma is considered, and a comma followed by anything but
// a single article-like word leaves the title untouched.
func FixTitleOrder(title string) string {
	idx := strings.LastIndex(title, ",")
	if idx < 0 {
		return title
	}

	tail := title[idx+1:]
	trimmed := strings.TrimSpace(tail)
	if trimmed == "" {
		return title
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return title
		}
	}
	if _, ok := unorderedWords[strings.ToLower(trimmed)]; !ok {
		return title
	}

	head := strings.TrimSpace(title[:idx])
	if head == "" {
		return title
	}
	return trimmed + " " + head
}
