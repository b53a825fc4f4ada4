package parsers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aerial/internal/searchkey"
)

// errRowRejected marks a data-quality rejection: the row is logged and
// skipped, never failing the file.
var errRowRejected = errors.New("row rejected")

// rowBuilder applies the shared per-row pipeline: date/time assembly in the
// source zone, UTC conversion, validity rejection, is_movie derivation,
// and format-hint title rewrites.
type rowBuilder struct {
	cfg          *Config
	loc          *time.Location
	validityDays int
	now          func() time.Time
}

func newRowBuilder(cfg *Config, loc *time.Location, validityDays int) *rowBuilder {
	return &rowBuilder{cfg: cfg, loc: loc, validityDays: validityDays, now: time.Now}
}

// earliestAllowed is today 00:00 UTC minus the validity window.
func (b *rowBuilder) earliestAllowed() time.Time {
	now := b.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -b.validityDays)
}

// Build turns raw logical-field values into a normalized Row.
func (b *rowBuilder) Build(raw map[string]string, sourceRow int) (*Row, error) {
	row := &Row{SourceRow: sourceRow}

	if err := b.buildDateTime(raw, row); err != nil {
		return nil, err
	}
	if row.DateTime.Before(b.earliestAllowed()) {
		return nil, fmt.Errorf("%w: air time %s predates validity window", errRowRejected, row.DateTime.Format(time.RFC3339))
	}

	b.buildSeasonEpisode(raw, row)
	b.buildTitles(raw, row)
	b.buildMetadata(raw, row)

	if row.LocalizedTitle == "" && row.OriginalTitle == nil {
		return nil, fmt.Errorf("%w: no title", errRowRejected)
	}
	if row.LocalizedTitle == "" && row.OriginalTitle != nil {
		row.LocalizedTitle = *row.OriginalTitle
	}

	// A session is a movie airing iff it carries neither season nor
	// episode; force both off when true.
	row.IsMovie = row.Season == nil && row.Episode == nil
	if row.IsMovie {
		row.Season = nil
		row.Episode = nil
	} else if row.Season == nil {
		season := 1
		row.Season = &season
	}
	return row, nil
}

func (b *rowBuilder) buildDateTime(raw map[string]string, row *Row) error {
	if spec, ok := b.cfg.Field("date_time"); ok {
		value := strings.TrimSpace(raw["date_time"])
		if value == "" {
			return fmt.Errorf("%w: empty date_time", errRowRejected)
		}
		at, err := b.parseLocal(spec.Format, value)
		if err != nil {
			return fmt.Errorf("%w: %v", errRowRejected, err)
		}
		row.DateTime = at.UTC()
		return nil
	}

	dateSpec, hasDate := b.cfg.Field("date")
	timeSpec, hasTime := b.cfg.Field("time")
	if !hasDate || !hasTime {
		return fmt.Errorf("%w: descriptor declares no date source", errRowRejected)
	}
	dateValue := strings.TrimSpace(raw["date"])
	timeValue := strings.TrimSpace(raw["time"])
	if dateValue == "" || timeValue == "" {
		return fmt.Errorf("%w: empty date or time", errRowRejected)
	}

	day, err := b.parseDateCell(dateSpec.Format, dateValue)
	if err != nil {
		return fmt.Errorf("%w: %v", errRowRejected, err)
	}
	clock, err := b.parseTimeCell(timeSpec.Format, timeValue)
	if err != nil {
		return fmt.Errorf("%w: %v", errRowRejected, err)
	}

	local := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, b.loc).Add(clock)
	row.DateTime = local.UTC()
	return nil
}

// layoutHint strips the merged-cell presence markers from a format cell so
// a field declared "mandatory" still parses with the default layout.
func layoutHint(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "mandatory", "optional":
		return ""
	}
	return format
}

// parseLocal parses a combined timestamp in the source zone.
func (b *rowBuilder) parseLocal(layout, value string) (time.Time, error) {
	layout = layoutHint(layout)
	if layout == "" {
		layout = "02/01/2006 15:04"
	}
	at, err := time.ParseInLocation(layout, value, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date_time %q: %w", value, err)
	}
	return at, nil
}

// parseDateCell reads a date, accepting the declared text layout or an
// Excel serial number converted with the workbook datemode.
func (b *rowBuilder) parseDateCell(layout, value string) (time.Time, error) {
	layout = layoutHint(layout)
	if layout == "" {
		layout = "02/01/2006"
	}
	if day, err := time.ParseInLocation(layout, value, b.loc); err == nil {
		return day, nil
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return serialToTime(serial, b.loc), nil
	}
	return time.Time{}, fmt.Errorf("parse date %q with layout %q", value, layout)
}

// parseTimeCell reads a clock value as a duration past midnight. Excel
// stores times as a day fraction.
func (b *rowBuilder) parseTimeCell(layout, value string) (time.Duration, error) {
	layout = layoutHint(layout)
	if layout == "" {
		layout = "15:04"
	}
	if clock, err := time.Parse(layout, value); err == nil {
		return time.Duration(clock.Hour())*time.Hour +
			time.Duration(clock.Minute())*time.Minute +
			time.Duration(clock.Second())*time.Second, nil
	}
	if fraction, err := strconv.ParseFloat(value, 64); err == nil && fraction >= 0 && fraction < 1 {
		return time.Duration(fraction * 24 * float64(time.Hour)).Round(time.Minute), nil
	}
	return 0, fmt.Errorf("parse time %q with layout %q", value, layout)
}

func (b *rowBuilder) buildSeasonEpisode(raw map[string]string, row *Row) {
	if spec, ok := b.cfg.Field("season"); ok {
		value := strings.TrimSpace(raw["season"])
		if value != "" {
			if spec.Format == "season_starts_with_T" {
				row.Season = ParseSeasonToken(value)
			} else if n, err := strconv.Atoi(value); err == nil && n > 0 {
				row.Season = &n
			}
		}
	}
	if _, ok := b.cfg.Field("episode"); ok {
		value := strings.TrimSpace(raw["episode"])
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			row.Episode = &n
		}
	}
}

func (b *rowBuilder) buildTitles(raw map[string]string, row *Row) {
	if spec, ok := b.cfg.Field("original_title"); ok {
		title := strings.TrimSpace(raw["original_title"])
		if title != "" {
			title, row.Year, row.Season, row.Episode, row.AudioLanguage, row.ExtendedCut =
				b.rewriteTitle(title, spec.Format, row.Year, row.Season, row.Episode, row.AudioLanguage, row.ExtendedCut)
			if title != "" {
				row.OriginalTitle = &title
			}
		}
	}
	if spec, ok := b.cfg.Field("localized_title"); ok {
		title := strings.TrimSpace(raw["localized_title"])
		if title != "" {
			title, row.Year, row.Season, row.Episode, row.AudioLanguage, row.ExtendedCut =
				b.rewriteTitle(title, spec.Format, row.Year, row.Season, row.Episode, row.AudioLanguage, row.ExtendedCut)
			row.LocalizedTitle = title
		}
	}
}

// rewriteTitle applies the format-hint rewrites shared by every variant.
func (b *rowBuilder) rewriteTitle(title, hint string, year, season, episode *int, audio *string, extended bool) (string, *int, *int, *int, *string, bool) {
	title = searchkey.CollapseQuotes(title)

	switch hint {
	case "season_at_the_end":
		if base, s := StripSeasonAtEnd(title); s != nil {
			title = base
			if season == nil {
				season = s
			}
		}
	case "S_season_at_the_end":
		if base, s := StripSSeasonAtEnd(title); s != nil {
			title = base
			if season == nil {
				season = s
			}
		}
	case "season_and_episode_at_the_end":
		if base, s, e := StripSeasonEpisodeAtEnd(title); s != nil {
			title = base
			if season == nil {
				season = s
			}
			if episode == nil {
				episode = e
			}
		}
	case "title_with_Ep.":
		if base, e := StripEpisodeSuffix(title); e != nil {
			title = base
			if episode == nil {
				episode = e
			}
		}
	case "has_year":
		if base, y := StripYearTag(title); y != nil {
			title = base
			if year == nil {
				year = y
			}
		}
	case "tvcine":
		var a *string
		var x bool
		title, a, x = TVCineSuffix(title)
		if audio == nil {
			audio = a
		}
		if x {
			extended = true
		}
		if base, y := StripYearTag(title); y != nil {
			title = base
			if year == nil {
				year = y
			}
		}
	}

	return strings.TrimSpace(searchkey.FixTitleOrder(title)), year, season, episode, audio, extended
}

func (b *rowBuilder) buildMetadata(raw map[string]string, row *Row) {
	if _, ok := b.cfg.Field("year"); ok && row.Year == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(raw["year"])); err == nil && n > 1800 {
			row.Year = &n
		}
	}
	if spec, ok := b.cfg.Field("duration"); ok {
		value := strings.TrimSpace(raw["duration"])
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			minutes := n
			if spec.Format == "seconds" {
				minutes = n / 60
			}
			row.DurationMinutes = &minutes
		}
	}

	row.Synopsis = optionalText(raw, "synopsis")
	row.EpisodeSynopsis = optionalText(raw, "localized_episode_synopsis")
	row.Cast = optionalText(raw, "cast")
	row.Directors = optionalText(raw, "directors")
	row.Creators = optionalText(raw, "creators")
	row.Countries = optionalText(raw, "countries")
	row.AgeClassification = optionalText(raw, "age_classification")
	row.Subgenre = optionalText(raw, "subgenre")
	if row.AudioLanguage == nil {
		row.AudioLanguage = optionalText(raw, "session_audio_language")
	}

	if b.cfg.HasSetting("swap_cast_directors") {
		row.Cast, row.Directors = SwapCastDirectors(row.Cast, row.Directors)
	}
	if b.cfg.HasSetting("ignore_directors") {
		row.Directors = nil
	}
}

func optionalText(raw map[string]string, field string) *string {
	value := strings.TrimSpace(raw[field])
	if value == "" {
		return nil
	}
	return &value
}

// serialToTime converts an Excel 1900-epoch serial day number. Serial 1 is
// 1899-12-31 plus the historical leap-year bug, so the epoch used here is
// 1899-12-30.
func serialToTime(serial float64, loc *time.Location) time.Time {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, loc)
	days := int(serial)
	fraction := serial - float64(days)
	return epoch.AddDate(0, 0, days).Add(time.Duration(fraction * 24 * float64(time.Hour)).Round(time.Minute))
}
