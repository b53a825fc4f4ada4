package parsers

import (
	"testing"
	"time"
)

func TestClassifyGridCell(t *testing.T) {
	tests := []struct {
		name string
		cell gridCell
		want gridCellKind
	}{
		{"empty", gridCell{}, gridCellEmpty},
		{"bold title", gridCell{Text: "Uma Aventura", Bold: true}, gridCellTitle},
		{"bold with episode", gridCell{Text: "Uma Aventura - Ep. 3", Bold: true}, gridCellTitle},
		{"italic translation", gridCell{Text: "An Adventure", Italic: true}, gridCellTranslation},
		{"episode number", gridCell{Text: "Ep. 12"}, gridCellEpisodeNumber},
		{"episode number no dot", gridCell{Text: "Ep 7"}, gridCellEpisodeNumber},
		{"episode title", gridCell{Text: "O regresso"}, gridCellEpisodeTitle},
	}
	for _, tt := range tests {
		if got := classifyGridCell(tt.cell); got != tt.want {
			t.Errorf("%s: classifyGridCell = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestIsoWeekStart(t *testing.T) {
	// Week 36 of 2026 starts on Monday 31 August.
	got := isoWeekStart(2026, 36)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("isoWeekStart(2026, 36) = %s, want %s", got, want)
	}
	if got.Weekday() != time.Monday {
		t.Fatalf("week start is %s, want Monday", got.Weekday())
	}
}

func TestExtractWeeklyGrid(t *testing.T) {
	cfg := testConfig(t, `field_name;source;format
date;;02/01/2006
time;;15:04
localized_title;;
original_title;;
episode;;
localized_episode_synopsis;;
_translation;italic;
_time_pos;0;
`)

	grid := [][]gridCell{
		{{Text: "Grelha Semana 36"}},
		{{Text: "Hora"}, {Text: "Segunda"}, {Text: "Terça"}},
		{
			{Text: "21:00"},
			{Text: "Uma Aventura", Bold: true, TopBorder: true},
			{Text: "O Clone", Bold: true, TopBorder: true},
		},
		{
			{},
			{Text: "An Adventure", Italic: true},
			{Text: "Ep. 12"},
		},
		{
			{},
			{Text: "Ep. 17", BottomBorder: true},
			{Text: "O regresso", BottomBorder: true},
		},
		{
			{Text: "23:00"},
			{Text: "Jornal da Noite", Bold: true, TopBorder: true},
		},
	}

	records, err := extractWeeklyGrid(grid, cfg, 2026)
	if err != nil {
		t.Fatalf("extractWeeklyGrid: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	byTitle := make(map[string]map[string]string)
	for _, record := range records {
		byTitle[record.Fields["localized_title"]] = record.Fields
	}

	adventure := byTitle["Uma Aventura"]
	if adventure == nil {
		t.Fatalf("missing Monday session: %v", byTitle)
	}
	if adventure["date"] != "31/08/2026" || adventure["time"] != "21:00" {
		t.Fatalf("adventure date/time = %q %q", adventure["date"], adventure["time"])
	}
	if adventure["original_title"] != "An Adventure" {
		t.Fatalf("adventure original_title = %q", adventure["original_title"])
	}
	if adventure["episode"] != "17" {
		t.Fatalf("adventure episode = %q", adventure["episode"])
	}

	clone := byTitle["O Clone"]
	if clone == nil || clone["date"] != "01/09/2026" {
		t.Fatalf("clone record = %v", clone)
	}
	if clone["episode"] != "12" {
		t.Fatalf("clone episode = %q", clone["episode"])
	}
	if clone["localized_episode_synopsis"] != "O regresso" {
		t.Fatalf("clone episode title = %q", clone["localized_episode_synopsis"])
	}

	jornal := byTitle["Jornal da Noite"]
	if jornal == nil || jornal["time"] != "23:00" || jornal["date"] != "31/08/2026" {
		t.Fatalf("jornal record = %v", jornal)
	}
}

func TestExtractWeeklyGridMissingWeekHeader(t *testing.T) {
	cfg := testConfig(t, "field_name;source;format\ndate;;02/01/2006\n")
	grid := [][]gridCell{{{Text: "Hora"}, {Text: "Segunda"}, {Text: "Terça"}}}
	if _, err := extractWeeklyGrid(grid, cfg, 2026); err == nil {
		t.Fatal("expected error without a week number")
	}
}
