package parsers

import (
	"strings"
	"testing"
)

func TestExtractPositional(t *testing.T) {
	cfg := testConfig(t, `field_name;source;format
date;0;02/01/2006
time;1;15:04
localized_title;2;
original_title;3;has_year
year;4;
_strings_to_ignore;Programação
`)
	rows := [][]string{
		{"Grelha de Programação", "", "", "", ""},
		{"Data", "Hora", "Título", "Título Original", "Ano"},
		{"02/07/2021", "21:30", "Parasitas", "Parasite (2019)", "2019"},
		{"", "", "", "", ""},
		{"03/07/2021", "23:00", "Programação a anunciar", "", "2020"},
	}

	records, err := extractPositional(rows, cfg)
	if err != nil {
		t.Fatalf("extractPositional: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	first := records[0]
	if first.Fields["localized_title"] != "Parasitas" ||
		first.Fields["original_title"] != "Parasite (2019)" ||
		first.Fields["year"] != "2019" {
		t.Fatalf("first record fields = %v", first.Fields)
	}
	if first.SourceRow != 3 {
		t.Fatalf("SourceRow = %d, want 3", first.SourceRow)
	}
	// The ignore list drops the filler title but the row itself survives
	// on its remaining fields.
	if _, ok := records[1].Fields["localized_title"]; ok {
		t.Fatal("ignored string must not be kept")
	}
}

func TestExtractHeaderIndexed(t *testing.T) {
	cfg := testConfig(t, `field_name;source;format
date;Date;02/01/2006
time;Start Time;15:04
original_title;Title;season_at_the_end
year;Year;
`)
	rows := [][]string{
		{"Nat Geo Wild", "", "", ""},
		{"Date", "Start Time", "Title", "Year", "Notes"},
		{"01/07/2021", "05:00", "Monster Croc Wrangler 4", "2016", "premiere"},
		{"01/07/2021", "05:43", "Wild Russia", "2018", ""},
	}

	records, err := extractHeaderIndexed(rows, cfg)
	if err != nil {
		t.Fatalf("extractHeaderIndexed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	first := records[0]
	if first.Fields["original_title"] != "Monster Croc Wrangler 4" || first.Fields["year"] != "2016" {
		t.Fatalf("first record fields = %v", first.Fields)
	}
	// Columns the descriptor does not name stay addressable.
	if first.Fields["Unknown 1"] != "premiere" {
		t.Fatalf("unknown column = %q", first.Fields["Unknown 1"])
	}
}

func TestExtractHeaderIndexedNoHeader(t *testing.T) {
	cfg := testConfig(t, `field_name;source;format
date;Date;
time;Hora;
`)
	rows := [][]string{{"only", "two"}, {"cells", "here"}}
	if _, err := extractHeaderIndexed(rows, cfg); err == nil {
		t.Fatal("expected error when no header row qualifies")
	}
}

func TestExtractMergedCell(t *testing.T) {
	cfg := testConfig(t, `field_name;source;format
date;\d{1,2}/\d{1,2}/\d{4};mandatory
time;\d{1,2}:\d{2};mandatory
localized_title;[^\d:].*;mandatory
season;\d{1,2};optional
episode;\d{1,4};optional
_date_separate_line;;
`)
	rows := [][]string{
		{"01/07/2021"},
		{"", "21:00", "A Grande Guerra", "3", "7"},
		{"22:00", "", "Apocalipse"},
		{"not a time", "Broken Row"},
		{"02/07/2021"},
		{"21:00", "Mistérios Abandonados", "", "12"},
	}

	records, err := extractMergedCell(rows, cfg)
	if err != nil {
		t.Fatalf("extractMergedCell: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	first := records[0]
	if first.Fields["date"] != "01/07/2021" || first.Fields["time"] != "21:00" ||
		first.Fields["localized_title"] != "A Grande Guerra" ||
		first.Fields["season"] != "3" || first.Fields["episode"] != "7" {
		t.Fatalf("first record fields = %v", first.Fields)
	}

	// Optional fields absent: the row still parses.
	second := records[1]
	if second.Fields["localized_title"] != "Apocalipse" {
		t.Fatalf("second record fields = %v", second.Fields)
	}
	if _, ok := second.Fields["season"]; ok {
		t.Fatalf("second record should have no season: %v", second.Fields)
	}

	// The date line before it governs the later rows.
	third := records[2]
	if third.Fields["date"] != "02/07/2021" {
		t.Fatalf("third record date = %q", third.Fields["date"])
	}
	// A single trailing number binds to the first optional field in
	// declaration order.
	if third.Fields["season"] != "12" {
		t.Fatalf("third record fields = %v", third.Fields)
	}
}

func TestDecodeXMLGuide(t *testing.T) {
	const guide = `<?xml version="1.0" encoding="UTF-8"?>
<TVGuide>
  <Channel name="Documentary">
    <Event beginTime="2021-07-02 21:00:00" duration="3300">
      <EpgProduction>
        <EpgText>
          <name>Apocalipse: A Segunda Guerra</name>
          <shortDescription>A guerra vista de dentro.</shortDescription>
        </EpgText>
      </EpgProduction>
      <ExtendedInfo name="OriginalEventName">Apocalypse: The Second World War</ExtendedInfo>
      <ExtendedInfo name="Year">2009</ExtendedInfo>
      <ExtendedInfo name="Cycle">1</ExtendedInfo>
      <ExtendedInfo name="EpisodeNumber">3</ExtendedInfo>
      <ExtendedInfo name="Nationality">França</ExtendedInfo>
      <ExtendedInfo name="IgnoredKey">noise</ExtendedInfo>
    </Event>
    <Event beginTime="2021-07-02 22:00:00" duration="0">
      <EpgProduction>
        <EpgText>
          <name>Megaestruturas</name>
        </EpgText>
      </EpgProduction>
    </Event>
  </Channel>
</TVGuide>`

	cfg := testConfig(t, "field_name;source;format\ndate_time;;2006-01-02 15:04:05\n")
	records, err := decodeXMLGuide(strings.NewReader(guide), cfg)
	if err != nil {
		t.Fatalf("decodeXMLGuide: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.Fields["date_time"] != "2021-07-02 21:00:00" {
		t.Fatalf("date_time = %q", first.Fields["date_time"])
	}
	if first.Fields["localized_title"] != "Apocalipse: A Segunda Guerra" {
		t.Fatalf("localized_title = %q", first.Fields["localized_title"])
	}
	if first.Fields["original_title"] != "Apocalypse: The Second World War" {
		t.Fatalf("original_title = %q", first.Fields["original_title"])
	}
	if first.Fields["season"] != "1" || first.Fields["episode"] != "3" {
		t.Fatalf("season/episode = %q/%q", first.Fields["season"], first.Fields["episode"])
	}
	if first.Fields["duration"] != "3300" {
		t.Fatalf("duration = %q", first.Fields["duration"])
	}
	if first.Fields["countries"] != "França" {
		t.Fatalf("countries = %q", first.Fields["countries"])
	}
	if _, ok := first.Fields["IgnoredKey"]; ok {
		t.Fatal("unmapped extended info must be dropped")
	}

	// Zero duration stays absent rather than becoming a fake value.
	if _, ok := records[1].Fields["duration"]; ok {
		t.Fatal("zero duration must not be emitted")
	}
}
