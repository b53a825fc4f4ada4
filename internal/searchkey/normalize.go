package searchkey

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// quoteVariants lists the quotation marks broadcasters use interchangeably.
const quoteVariants = "'‘’‚‛′`´\"“”„"

// StripAccents decomposes text to NFD and drops combining marks.
func StripAccents(text string) string {
	stripped, _, err := transform.String(accentStripper, text)
	if err != nil {
		return text
	}
	return stripped
}

// CollapseQuotes folds every quotation-mark variant to an ASCII apostrophe.
func CollapseQuotes(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(quoteVariants, r) {
			return '\''
		}
		return r
	}, text)
}

// MakeSearchable canonicalizes a title into its search key. Accents are
// stripped, quotation variants collapse to an apostrophe, and every run of
// other non-alphanumeric characters becomes a single underscore. Leading and
// trailing underscores are kept as sentinels so a regex for "_Title_" only
// matches whole tokens.
func MakeSearchable(text string) string {
	text = CollapseQuotes(StripAccents(text))

	var builder strings.Builder
	builder.Grow(len(text) + 2)
	builder.WriteByte('_')
	inRun := true // leading sentinel already written
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			builder.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			builder.WriteByte('_')
			inRun = true
		}
	}
	key := builder.String()
	if !strings.HasSuffix(key, "_") {
		key += "_"
	}
	return key
}
