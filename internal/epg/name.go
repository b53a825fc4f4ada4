package epg

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	seasonEpisodePattern = regexp.MustCompile(`^(.+) T(\d+) - Ep\. (\d+)$`)
	episodeOnlyPattern   = regexp.MustCompile(`^(.+) - Ep\. (\d+)$`)
)

// SplitProgramName breaks a guide program name into title, season, and
// episode. "Show T2 - Ep. 5" yields ("Show", 2, 5); "Show - Ep. 5" yields
// ("Show", 1, 5); anything else is a bare title with nil season/episode.
func SplitProgramName(name string) (title string, season, episode *int) {
	name = strings.TrimSpace(name)

	if m := seasonEpisodePattern.FindStringSubmatch(name); m != nil {
		s, _ := strconv.Atoi(m[2])
		e, _ := strconv.Atoi(m[3])
		return strings.TrimSpace(m[1]), &s, &e
	}
	if m := episodeOnlyPattern.FindStringSubmatch(name); m != nil {
		s := 1
		e, _ := strconv.Atoi(m[2])
		return strings.TrimSpace(m[1]), &s, &e
	}
	return name, nil, nil
}
