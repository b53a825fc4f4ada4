package parsers

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func lisbonLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Fatalf("load Europe/Lisbon: %v", err)
	}
	return loc
}

func testConfig(t *testing.T, descriptor string) *Config {
	t.Helper()
	cfg, err := ParseConfig(strings.NewReader(descriptor))
	if err != nil {
		t.Fatalf("parse descriptor: %v", err)
	}
	return cfg
}

func testBuilder(t *testing.T, descriptor string, now time.Time, validityDays int) *rowBuilder {
	t.Helper()
	builder := newRowBuilder(testConfig(t, descriptor), lisbonLocation(t), validityDays)
	builder.now = func() time.Time { return now }
	return builder
}

const seriesDescriptor = `field_name;source;format
date;0;02/01/2006
time;1;15:04
original_title;2;season_at_the_end
year;3;
episode;4;
duration;5;
`

func TestBuildSeriesRow(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	builder := testBuilder(t, seriesDescriptor, now, 30)

	row, err := builder.Build(map[string]string{
		"date":           "01/07/2021",
		"time":           "05:00",
		"original_title": "Monster Croc Wrangler 4",
		"year":           "2016",
		"episode":        "10",
		"duration":       "45",
	}, 7)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Lisbon runs UTC+1 in July.
	want := time.Date(2021, 7, 1, 4, 0, 0, 0, time.UTC)
	if !row.DateTime.Equal(want) {
		t.Fatalf("DateTime = %s, want %s", row.DateTime, want)
	}
	if row.OriginalTitle == nil || *row.OriginalTitle != "Monster Croc Wrangler" {
		t.Fatalf("OriginalTitle = %v", row.OriginalTitle)
	}
	if row.LocalizedTitle != "Monster Croc Wrangler" {
		t.Fatalf("LocalizedTitle = %q", row.LocalizedTitle)
	}
	if row.Season == nil || *row.Season != 4 {
		t.Fatalf("Season = %v, want 4", row.Season)
	}
	if row.Episode == nil || *row.Episode != 10 {
		t.Fatalf("Episode = %v, want 10", row.Episode)
	}
	if row.Year == nil || *row.Year != 2016 {
		t.Fatalf("Year = %v, want 2016", row.Year)
	}
	if row.DurationMinutes == nil || *row.DurationMinutes != 45 {
		t.Fatalf("DurationMinutes = %v, want 45", row.DurationMinutes)
	}
	if row.IsMovie {
		t.Fatal("row with season and episode must not be a movie")
	}
	if row.SourceRow != 7 {
		t.Fatalf("SourceRow = %d", row.SourceRow)
	}
}

func TestBuildRejectsBeforeValidityWindow(t *testing.T) {
	now := time.Date(2021, 7, 15, 12, 0, 0, 0, time.UTC)
	builder := testBuilder(t, seriesDescriptor, now, 30)

	_, err := builder.Build(map[string]string{
		"date":           "01/06/2021",
		"time":           "21:00",
		"original_title": "Old Broadcast",
	}, 1)
	if !errors.Is(err, errRowRejected) {
		t.Fatalf("err = %v, want errRowRejected", err)
	}

	// The first day inside the window passes.
	row, err := builder.Build(map[string]string{
		"date":           "15/06/2021",
		"time":           "21:00",
		"original_title": "Recent Broadcast",
	}, 2)
	if err != nil {
		t.Fatalf("Build at window edge: %v", err)
	}
	if row.LocalizedTitle != "Recent Broadcast" {
		t.Fatalf("LocalizedTitle = %q", row.LocalizedTitle)
	}
}

func TestBuildMovieDerivation(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	descriptor := `field_name;source;format
date;0;02/01/2006
time;1;15:04
localized_title;2;
episode;3;
`
	builder := testBuilder(t, descriptor, now, 30)

	movie, err := builder.Build(map[string]string{
		"date":            "02/07/2021",
		"time":            "21:30",
		"localized_title": "Titanic",
	}, 1)
	if err != nil {
		t.Fatalf("Build movie: %v", err)
	}
	if !movie.IsMovie || movie.Season != nil || movie.Episode != nil {
		t.Fatalf("movie derivation = %v season=%v episode=%v", movie.IsMovie, movie.Season, movie.Episode)
	}

	// An episode without a season gets season 1.
	series, err := builder.Build(map[string]string{
		"date":            "02/07/2021",
		"time":            "22:30",
		"localized_title": "Uma Aventura",
		"episode":         "17",
	}, 2)
	if err != nil {
		t.Fatalf("Build series: %v", err)
	}
	if series.IsMovie {
		t.Fatal("row with episode must be a series")
	}
	if series.Season == nil || *series.Season != 1 {
		t.Fatalf("Season = %v, want 1", series.Season)
	}
}

func TestBuildExcelSerialCells(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	builder := testBuilder(t, seriesDescriptor, now, 30)

	// Serial 44378 is 2021-07-01; 0.25 is 06:00.
	row, err := builder.Build(map[string]string{
		"date":           "44378",
		"time":           "0.25",
		"original_title": "Wild Russia",
	}, 1)
	if err != nil {
		t.Fatalf("Build from serials: %v", err)
	}
	want := time.Date(2021, 7, 1, 5, 0, 0, 0, time.UTC)
	if !row.DateTime.Equal(want) {
		t.Fatalf("DateTime = %s, want %s", row.DateTime, want)
	}
}

func TestBuildCombinedDateTime(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	descriptor := `field_name;source;format
date_time;;2006-01-02 15:04:05
localized_title;;
duration;;seconds
`
	builder := testBuilder(t, descriptor, now, 30)

	row, err := builder.Build(map[string]string{
		"date_time":       "2021-07-03 21:15:00",
		"localized_title": "Apocalipse",
		"duration":        "3600",
	}, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := time.Date(2021, 7, 3, 20, 15, 0, 0, time.UTC)
	if !row.DateTime.Equal(want) {
		t.Fatalf("DateTime = %s, want %s", row.DateTime, want)
	}
	if row.DurationMinutes == nil || *row.DurationMinutes != 60 {
		t.Fatalf("DurationMinutes = %v, want 60", row.DurationMinutes)
	}
}

func TestBuildTVCineHint(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	descriptor := `field_name;source;format
date;0;02/01/2006
time;1;15:04
original_title;2;tvcine
_swap_cast_directors;;
`
	builder := testBuilder(t, descriptor, now, 30)

	row, err := builder.Build(map[string]string{
		"date":           "05/07/2021",
		"time":           "21:30",
		"original_title": "Angry Birds Movie 2, The (VP)",
	}, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if row.OriginalTitle == nil || *row.OriginalTitle != "The Angry Birds Movie 2" {
		t.Fatalf("OriginalTitle = %v", row.OriginalTitle)
	}
	if row.AudioLanguage == nil || *row.AudioLanguage != "pt" {
		t.Fatalf("AudioLanguage = %v, want pt", row.AudioLanguage)
	}
	if !row.IsMovie {
		t.Fatal("title without season or episode must be a movie")
	}
}

func TestBuildRejectsTitleless(t *testing.T) {
	now := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	builder := testBuilder(t, seriesDescriptor, now, 30)

	_, err := builder.Build(map[string]string{
		"date": "02/07/2021",
		"time": "21:00",
	}, 1)
	if !errors.Is(err, errRowRejected) {
		t.Fatalf("err = %v, want errRowRejected", err)
	}
}
