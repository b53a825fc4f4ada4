package parsers

import "testing"

func TestStripSeasonAtEnd(t *testing.T) {
	tests := []struct {
		title      string
		wantTitle  string
		wantSeason int
	}{
		{"Monster Croc Wrangler 4", "Monster Croc Wrangler", 4},
		{"Wild Russia", "Wild Russia", 0},
		{"Area 51", "Area", 51},
	}
	for _, tt := range tests {
		got, season := StripSeasonAtEnd(tt.title)
		if got != tt.wantTitle {
			t.Errorf("StripSeasonAtEnd(%q) title = %q, want %q", tt.title, got, tt.wantTitle)
		}
		if tt.wantSeason == 0 && season != nil {
			t.Errorf("StripSeasonAtEnd(%q) season = %d, want none", tt.title, *season)
		}
		if tt.wantSeason != 0 && (season == nil || *season != tt.wantSeason) {
			t.Errorf("StripSeasonAtEnd(%q) season = %v, want %d", tt.title, season, tt.wantSeason)
		}
	}
}

func TestStripSSeasonAtEnd(t *testing.T) {
	got, season := StripSSeasonAtEnd("Hardcore Pawn S9")
	if got != "Hardcore Pawn" || season == nil || *season != 9 {
		t.Fatalf("StripSSeasonAtEnd = %q, %v", got, season)
	}
	got, season = StripSSeasonAtEnd("Plain Title")
	if got != "Plain Title" || season != nil {
		t.Fatalf("StripSSeasonAtEnd without tag = %q, %v", got, season)
	}
}

func TestStripSeasonEpisodeAtEnd(t *testing.T) {
	got, season, episode := StripSeasonEpisodeAtEnd("Abandoned Engineering T2 - Ep. 6")
	if got != "Abandoned Engineering" || season == nil || *season != 2 || episode == nil || *episode != 6 {
		t.Fatalf("StripSeasonEpisodeAtEnd = %q, %v, %v", got, season, episode)
	}
}

func TestStripEpisodeSuffix(t *testing.T) {
	got, episode := StripEpisodeSuffix("Uma Aventura - Ep. 17")
	if got != "Uma Aventura" || episode == nil || *episode != 17 {
		t.Fatalf("StripEpisodeSuffix = %q, %v", got, episode)
	}
	got, episode = StripEpisodeSuffix("Jornal da Noite")
	if got != "Jornal da Noite" || episode != nil {
		t.Fatalf("StripEpisodeSuffix without suffix = %q, %v", got, episode)
	}
}

func TestStripYearTag(t *testing.T) {
	tests := []struct {
		title     string
		wantTitle string
		wantYear  int
	}{
		{"Titanic (re-release 2012)", "Titanic", 2012},
		{"Parasite (2019)", "Parasite", 2019},
		{"No Tag", "No Tag", 0},
	}
	for _, tt := range tests {
		got, year := StripYearTag(tt.title)
		if got != tt.wantTitle {
			t.Errorf("StripYearTag(%q) title = %q, want %q", tt.title, got, tt.wantTitle)
		}
		if tt.wantYear == 0 && year != nil {
			t.Errorf("StripYearTag(%q) year = %d, want none", tt.title, *year)
		}
		if tt.wantYear != 0 && (year == nil || *year != tt.wantYear) {
			t.Errorf("StripYearTag(%q) year = %v, want %d", tt.title, year, tt.wantYear)
		}
	}
}

func TestParseSeasonToken(t *testing.T) {
	if season := ParseSeasonToken("T3"); season == nil || *season != 3 {
		t.Fatalf("ParseSeasonToken(T3) = %v", season)
	}
	if season := ParseSeasonToken("3"); season != nil {
		t.Fatalf("ParseSeasonToken(3) = %d, want nil", *season)
	}
}

func TestTVCineSuffix(t *testing.T) {
	base, audio, extended := TVCineSuffix("Angry Birds Movie 2, The (VP)")
	if base != "The Angry Birds Movie 2" {
		t.Fatalf("base = %q", base)
	}
	if audio == nil || *audio != "pt" {
		t.Fatalf("audio = %v, want pt", audio)
	}
	if extended {
		t.Fatal("extended cut should be false")
	}

	base, audio, extended = TVCineSuffix("Furious 7 (extended cut)")
	if base != "Furious 7" || audio != nil || !extended {
		t.Fatalf("extended cut parse = %q, %v, %v", base, audio, extended)
	}

	base, audio, _ = TVCineSuffix("Parasite (VO)")
	if base != "Parasite" || audio != nil {
		t.Fatalf("VO parse = %q, %v", base, audio)
	}
}

func TestSwapCastDirectors(t *testing.T) {
	cast := "James Cameron"
	directors := "Kate Winslet, Leonardo DiCaprio, Billy Zane"
	gotCast, gotDirectors := SwapCastDirectors(&cast, &directors)
	if *gotCast != directors || *gotDirectors != cast {
		t.Fatalf("swap not applied: %q / %q", *gotCast, *gotDirectors)
	}

	okCast := "Kate Winslet, Leonardo DiCaprio"
	okDirectors := "James Cameron"
	gotCast, gotDirectors = SwapCastDirectors(&okCast, &okDirectors)
	if *gotCast != okCast || *gotDirectors != okDirectors {
		t.Fatal("well-ordered columns must not swap")
	}

	gotCast, gotDirectors = SwapCastDirectors(nil, &okDirectors)
	if gotCast != nil || *gotDirectors != okDirectors {
		t.Fatal("nil cast must pass through")
	}
}
