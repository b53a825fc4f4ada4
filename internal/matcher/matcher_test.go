package matcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/parsers"
	"aerial/internal/tmdb"
)

// fakeSearcher serves canned TMDB payloads.
type fakeSearcher struct {
	results      []tmdb.Result
	yearlessOnly bool
	details      map[int64]*tmdb.Show
	credits      map[int64]*tmdb.Credits
	searchCalls  int
}

func (f *fakeSearcher) SearchShows(_ context.Context, _ string, year int, _ bool) []tmdb.Result {
	f.searchCalls++
	if f.yearlessOnly && year != 0 {
		return nil
	}
	return f.results
}

func (f *fakeSearcher) GetShowByID(_ context.Context, id int64, _ bool) *tmdb.Show {
	return f.details[id]
}

func (f *fakeSearcher) GetTranslations(context.Context, int64, bool) []tmdb.Translation { return nil }
func (f *fakeSearcher) GetAliases(context.Context, int64, bool) []tmdb.Alias           { return nil }

func (f *fakeSearcher) GetCrew(_ context.Context, id int64, _ bool) *tmdb.Credits {
	return f.credits[id]
}

func (f *fakeSearcher) CollectTitles(context.Context, int64, bool) []string { return nil }

type fakePosters struct{ url string }

func (f fakePosters) PosterURL(context.Context, string) string { return f.url }

func newMatcherStore(t *testing.T) (*catalog.Store, *catalog.Channel) {
	t.Helper()
	ctx := context.Background()
	store, err := catalog.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if _, err := store.UpsertChannel(ctx, catalog.Channel{Acronym: "HOLL", Name: "Hollywood"}); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	channel, err := store.ChannelByAcronym(ctx, "HOLL")
	if err != nil {
		t.Fatalf("read channel: %v", err)
	}
	return store, channel
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func i64p(n int64) *int64   { return &n }
func boolp(b bool) *bool    { return &b }

func movieRow(original string, year int) parsers.Row {
	return parsers.Row{
		OriginalTitle:  strp(original),
		LocalizedTitle: original,
		Year:           intp(year),
		DateTime:       time.Now().UTC(),
		IsMovie:        true,
	}
}

func TestMatchCorrectionShortCircuits(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	target, err := store.InsertShowData(ctx, &catalog.ShowData{
		SearchTitle:    "_canonical_work_",
		LocalizedTitle: strp("Canonical Work"),
	})
	if err != nil {
		t.Fatalf("insert target: %v", err)
	}
	if _, err := store.InsertCorrection(ctx, catalog.Correction{
		ChannelID:      channel.ID,
		ShowDataID:     target.ID,
		LocalizedTitle: strp("Obra Local"),
	}); err != nil {
		t.Fatalf("insert correction: %v", err)
	}

	search := &fakeSearcher{}
	m := New(store, search)
	row := parsers.Row{LocalizedTitle: "Obra Local", DateTime: time.Now().UTC(), IsMovie: true}
	show, newShow, err := m.Match(ctx, channel, row)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if show.ID != target.ID || newShow {
		t.Fatalf("show = %d newShow = %v, want correction target", show.ID, newShow)
	}
	if search.searchCalls != 0 {
		t.Fatal("correction hit must not reach TMDB")
	}
}

func TestMatchByOriginalTitleYear(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	existing, err := store.InsertShowData(ctx, &catalog.ShowData{
		SearchTitle:   "_parasite_",
		TMDBID:        i64p(496243),
		IsMovie:       boolp(true),
		OriginalTitle: strp("Parasite"),
		Year:          intp(2019),
	})
	if err != nil {
		t.Fatalf("insert existing: %v", err)
	}

	m := New(store, &fakeSearcher{})
	show, newShow, err := m.Match(ctx, channel, movieRow("Parasite", 2019))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if show.ID != existing.ID || newShow {
		t.Fatalf("show = %d newShow = %v", show.ID, newShow)
	}
}

func TestMatchPlaceholder(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	placeholder, err := store.InsertShowData(ctx, &catalog.ShowData{
		SearchTitle:    "_jornal_da_noite_",
		LocalizedTitle: strp("Jornal da Noite"),
	})
	if err != nil {
		t.Fatalf("insert placeholder: %v", err)
	}

	m := New(store, &fakeSearcher{})
	row := parsers.Row{LocalizedTitle: "Jornal da Noite", DateTime: time.Now().UTC(), IsMovie: true}
	show, newShow, err := m.Match(ctx, channel, row)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if show.ID != placeholder.ID || newShow {
		t.Fatalf("show = %d newShow = %v", show.ID, newShow)
	}
}

func TestMatchTMDBResolution(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	search := &fakeSearcher{
		results: []tmdb.Result{
			{ID: 11, OriginalT: "Wrong Title", VoteCount: 90000},
			{ID: 22, OriginalT: "Parasite", VoteCount: 15000, Popularity: 60},
		},
		details: map[int64]*tmdb.Show{
			22: {
				ID:          22,
				Title:       "Parasitas",
				OriginalT:   "Parasite",
				Overview:    "A poor family schemes its way in.",
				ReleaseDate: "2019-05-30",
				Genres:      []tmdb.Genre{{Name: "Thriller"}, {Name: "Drama"}},
				Countries:   []tmdb.Country{{ISO: "KR", Name: "South Korea"}},
				Runtime:     132,
				VoteAverage: 8.5,
				VoteCount:   15000,
				Popularity:  60,
				IMDBID:      "tt6751668",
			},
		},
		credits: map[int64]*tmdb.Credits{
			22: {
				Cast: []tmdb.CastMember{{Name: "Song Kang-ho", Order: 0}, {Name: "Lee Sun-kyun", Order: 1}},
				Crew: []tmdb.CrewMember{{Name: "Bong Joon-ho", Job: "Director"}},
			},
		},
	}

	m := New(store, search, WithPosterSource(fakePosters{url: "https://img.example/parasite.jpg"}))
	show, newShow, err := m.Match(ctx, channel, movieRow("Parasite", 2019))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !newShow {
		t.Fatal("resolution must create a new show")
	}
	if show.TMDBID == nil || *show.TMDBID != 22 {
		t.Fatalf("TMDBID = %v, want 22", show.TMDBID)
	}
	if show.Synopsis == nil || *show.Synopsis != "A poor family schemes its way in." {
		t.Fatalf("Synopsis = %v", show.Synopsis)
	}
	if show.Genre == nil || *show.Genre != "Thriller, Drama" {
		t.Fatalf("Genre = %v", show.Genre)
	}
	if show.DurationMinutes == nil || *show.DurationMinutes != 132 {
		t.Fatalf("DurationMinutes = %v", show.DurationMinutes)
	}
	if show.Director == nil || *show.Director != "Bong Joon-ho" {
		t.Fatalf("Director = %v", show.Director)
	}
	if show.Cast == nil || *show.Cast != "Song Kang-ho, Lee Sun-kyun" {
		t.Fatalf("Cast = %v", show.Cast)
	}
	if show.PosterURL == nil || *show.PosterURL != "https://img.example/parasite.jpg" {
		t.Fatalf("PosterURL = %v", show.PosterURL)
	}
	if show.PremiereDate == nil || !show.PremiereDate.Equal(time.Date(2019, 5, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("PremiereDate = %v", show.PremiereDate)
	}

	// A second row for the same work reuses the attached record.
	again, newAgain, err := m.Match(ctx, channel, movieRow("Parasite", 2019))
	if err != nil {
		t.Fatalf("second Match: %v", err)
	}
	if again.ID != show.ID || newAgain {
		t.Fatalf("second match = %d newShow = %v", again.ID, newAgain)
	}
}

func TestMatchYearlessRetry(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	search := &fakeSearcher{
		yearlessOnly: true,
		results:      []tmdb.Result{{ID: 7, OriginalT: "Titanic", VoteCount: 20000}},
		details:      map[int64]*tmdb.Show{7: {ID: 7, OriginalT: "Titanic", ReleaseDate: "1997-12-19"}},
	}
	m := New(store, search)
	show, newShow, err := m.Match(ctx, channel, movieRow("Titanic", 1997))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !newShow || show.TMDBID == nil || *show.TMDBID != 7 {
		t.Fatalf("show = %+v newShow = %v", show, newShow)
	}
	if search.searchCalls != 2 {
		t.Fatalf("search calls = %d, want year retry", search.searchCalls)
	}
}

func TestMatchSeriesCreatorMismatch(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	search := &fakeSearcher{
		results: []tmdb.Result{{ID: 5, OriginalN: "The Crown", VoteCount: 4000}},
		details: map[int64]*tmdb.Show{
			5: {ID: 5, OriginalN: "The Crown", CreatedBy: []tmdb.Creator{{Name: "Peter Morgan"}}},
		},
	}
	m := New(store, search)
	row := parsers.Row{
		OriginalTitle:  strp("The Crown"),
		LocalizedTitle: "The Crown",
		Year:           intp(2016),
		Season:         intp(1),
		Episode:        intp(1),
		Creators:       strp("Someone Else"),
		DateTime:       time.Now().UTC(),
	}
	show, newShow, err := m.Match(ctx, channel, row)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// The creator mismatch rejects the hit; the row still gets a catalog
	// entry without a TMDB id.
	if !newShow || show.TMDBID != nil {
		t.Fatalf("show = %+v newShow = %v", show, newShow)
	}

	row.Creators = strp("Tom Writer, Peter Morgan")
	row.LocalizedTitle = "The Crown S2"
	show2, _, err := m.Match(ctx, channel, row)
	if err != nil {
		t.Fatalf("Match with overlap: %v", err)
	}
	if show2.TMDBID == nil || *show2.TMDBID != 5 {
		t.Fatalf("overlap must attach: %+v", show2)
	}
}

func TestMatchEnrichesExistingOnAttach(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	existing, err := store.InsertShowData(ctx, &catalog.ShowData{
		SearchTitle:   "_titanic_",
		OriginalTitle: strp("Titanic"),
		Year:          intp(1997),
	})
	if err != nil {
		t.Fatalf("insert existing: %v", err)
	}

	search := &fakeSearcher{
		results: []tmdb.Result{{ID: 7, OriginalT: "Titanic", VoteCount: 20000}},
		details: map[int64]*tmdb.Show{
			7: {ID: 7, OriginalT: "Titanic", ReleaseDate: "1997-12-19", VoteAverage: 7.9, VoteCount: 20000},
		},
	}
	m := New(store, search)
	show, newShow, err := m.Match(ctx, channel, movieRow("Titanic", 1997))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if newShow {
		t.Fatal("enrich-on-attach must not count as new")
	}
	if show.ID != existing.ID {
		t.Fatalf("show = %d, want existing %d", show.ID, existing.ID)
	}
	if show.TMDBID == nil || *show.TMDBID != 7 {
		t.Fatalf("TMDBID = %v", show.TMDBID)
	}

	reread, err := store.ShowDataByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.TMDBID == nil || *reread.TMDBID != 7 || reread.VoteCount == nil || *reread.VoteCount != 20000 {
		t.Fatalf("persisted enrichment = %+v", reread)
	}
}

func TestMatchUnmatchedFallback(t *testing.T) {
	ctx := context.Background()
	store, channel := newMatcherStore(t)

	m := New(store, &fakeSearcher{})
	show, newShow, err := m.Match(ctx, channel, movieRow("Filme Obscuro", 2003))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !newShow || show.TMDBID != nil {
		t.Fatalf("fallback = %+v newShow = %v", show, newShow)
	}
	if show.OriginalTitle == nil || *show.OriginalTitle != "Filme Obscuro" {
		t.Fatalf("OriginalTitle = %v", show.OriginalTitle)
	}
}

func TestEnrichManualCorrection(t *testing.T) {
	ctx := context.Background()
	store, _ := newMatcherStore(t)

	existing, err := store.InsertShowData(ctx, &catalog.ShowData{
		SearchTitle:   "_o_regresso_",
		OriginalTitle: strp("O Regresso"),
	})
	if err != nil {
		t.Fatalf("insert existing: %v", err)
	}

	search := &fakeSearcher{
		details: map[int64]*tmdb.Show{
			281957: {ID: 281957, OriginalT: "The Revenant", ReleaseDate: "2015-12-25", VoteAverage: 7.5, VoteCount: 18000},
		},
	}
	m := New(store, search)

	show, err := m.Enrich(ctx, existing.ID, 281957, true)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if show.TMDBID == nil || *show.TMDBID != 281957 {
		t.Fatalf("TMDBID = %v", show.TMDBID)
	}
	if show.IsMovie == nil || !*show.IsMovie {
		t.Fatalf("IsMovie = %v", show.IsMovie)
	}

	reread, err := store.ShowDataByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread.VoteCount == nil || *reread.VoteCount != 18000 {
		t.Fatalf("persisted enrichment = %+v", reread)
	}

	if _, err := m.Enrich(ctx, existing.ID, 999, true); err == nil {
		t.Fatal("expected error for unknown tmdb id")
	}
	if _, err := New(store, nil).Enrich(ctx, existing.ID, 281957, true); err == nil {
		t.Fatal("expected error without tmdb client")
	}
}
