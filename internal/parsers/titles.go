package parsers

import (
	"regexp"
	"strconv"
	"strings"

	"aerial/internal/searchkey"
)

var (
	seasonAtEndPattern        = regexp.MustCompile(`^(.*\S)\s+(\d{1,2})$`)
	sSeasonAtEndPattern       = regexp.MustCompile(`^(.*\S)\s+S(\d{1,2})$`)
	seasonEpisodeAtEndPattern = regexp.MustCompile(`^(.*\S)\s+T?(\d{1,2})\s*-\s*Ep\.?\s*(\d{1,4})$`)
	episodeSuffixPattern      = regexp.MustCompile(`^(.*\S)\s*-\s*Ep\.?\s*(\d{1,4})$`)
	yearTagPattern            = regexp.MustCompile(`^(.*\S)\s*\((?:re-release\s+)?(\d{4})\)$`)
	seasonTokenPattern        = regexp.MustCompile(`^T\s*(\d{1,2})$`)
)

// StripSeasonAtEnd removes a trailing season number from a series title:
// "Monster Croc Wrangler 4" yields ("Monster Croc Wrangler", 4).
func StripSeasonAtEnd(title string) (string, *int) {
	m := seasonAtEndPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return strings.TrimSpace(title), nil
	}
	season, _ := strconv.Atoi(m[2])
	return m[1], &season
}

// StripSSeasonAtEnd removes a trailing "S<n>" season tag.
func StripSSeasonAtEnd(title string) (string, *int) {
	m := sSeasonAtEndPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return strings.TrimSpace(title), nil
	}
	season, _ := strconv.Atoi(m[2])
	return m[1], &season
}

// StripSeasonEpisodeAtEnd removes a trailing "T<s> - Ep. <e>" pair.
func StripSeasonEpisodeAtEnd(title string) (string, *int, *int) {
	m := seasonEpisodeAtEndPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return strings.TrimSpace(title), nil, nil
	}
	season, _ := strconv.Atoi(m[2])
	episode, _ := strconv.Atoi(m[3])
	return m[1], &season, &episode
}

// StripEpisodeSuffix removes a trailing "- Ep. <n>": "Uma Aventura - Ep. 17"
// yields ("Uma Aventura", 17).
func StripEpisodeSuffix(title string) (string, *int) {
	m := episodeSuffixPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return strings.TrimSpace(title), nil
	}
	episode, _ := strconv.Atoi(m[2])
	return m[1], &episode
}

// StripYearTag removes a trailing "(YYYY)" or "(re-release YYYY)" tag and
// returns the year it carried.
func StripYearTag(title string) (string, *int) {
	m := yearTagPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return strings.TrimSpace(title), nil
	}
	year, _ := strconv.Atoi(m[2])
	return m[1], &year
}

// ParseSeasonToken reads a "T<n>" season cell.
func ParseSeasonToken(value string) *int {
	m := seasonTokenPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return nil
	}
	season, _ := strconv.Atoi(m[1])
	return &season
}

// TVCineSuffix interprets the premium-movie-channel title suffixes:
// "(VP)" marks a Portuguese dub, "(VO)" the original audio, and
// "(extended cut)" an extended edition. The base title is also reordered
// ("Angry Birds Movie 2, The" to "The Angry Birds Movie 2") and has its
// quotation variants collapsed.
func TVCineSuffix(title string) (base string, audioLanguage *string, extendedCut bool) {
	base = strings.TrimSpace(title)
	for {
		switch {
		case strings.HasSuffix(base, "(VP)"):
			pt := "pt"
			audioLanguage = &pt
			base = strings.TrimSpace(strings.TrimSuffix(base, "(VP)"))
		case strings.HasSuffix(base, "(VO)"):
			audioLanguage = nil
			base = strings.TrimSpace(strings.TrimSuffix(base, "(VO)"))
		case strings.HasSuffix(base, "(extended cut)"):
			extendedCut = true
			base = strings.TrimSpace(strings.TrimSuffix(base, "(extended cut)"))
		default:
			base = searchkey.FixTitleOrder(searchkey.CollapseQuotes(base))
			return base, audioLanguage, extendedCut
		}
	}
}

// SwapCastDirectors corrects source files that fill the two columns in the
// wrong order. The columns swap when the cast cell lists fewer names than
// the directors cell; a real cast list is almost always the longer one.
func SwapCastDirectors(cast, directors *string) (*string, *string) {
	if cast == nil || directors == nil {
		return cast, directors
	}
	if strings.Count(*cast, ",") < strings.Count(*directors, ",") {
		return directors, cast
	}
	return cast, directors
}
