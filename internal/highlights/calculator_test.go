package highlights

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aerial/internal/catalog"
)

func strp(s string) *string       { return &s }
func intp(n int) *int             { return &n }
func i64p(n int64) *int64         { return &n }
func boolp(b bool) *bool          { return &b }
func floatp(f float64) *float64   { return &f }
func timep(t time.Time) *time.Time { return &t }

func newTestStore(t *testing.T) (*catalog.Store, int64) {
	t.Helper()
	ctx := context.Background()
	store, err := catalog.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if _, err := store.UpsertChannel(ctx, catalog.Channel{Acronym: "ODIS", Name: "Odisseia"}); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	channel, err := store.ChannelByAcronym(ctx, "ODIS")
	if err != nil {
		t.Fatalf("read channel: %v", err)
	}
	return store, channel.ID
}

func seedShowWithSession(t *testing.T, store *catalog.Store, channelID int64, show catalog.ShowData, season *int, airTime time.Time) int64 {
	t.Helper()
	ctx := context.Background()
	inserted, err := store.InsertShowData(ctx, &show)
	if err != nil {
		t.Fatalf("insert show %s: %v", show.SearchTitle, err)
	}
	var episode *int
	if season != nil {
		episode = intp(1)
	}
	if _, err := store.InsertSession(ctx, &catalog.ShowSession{
		ShowDataID: inserted.ID,
		ChannelID:  channelID,
		Season:     season,
		Episode:    episode,
		DateTime:   airTime,
	}); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return inserted.ID
}

func TestRunScoreAndNewLists(t *testing.T) {
	ctx := context.Background()
	store, channelID := newTestStore(t)

	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC) // Wednesday, ISO week 36
	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	inWeek := weekStart.Add(2 * 24 * time.Hour).Add(21 * time.Hour)
	nextWeek := weekStart.AddDate(0, 0, 8).Add(21 * time.Hour)

	bestID := seedShowWithSession(t, store, channelID, catalog.ShowData{
		SearchTitle: "_best_movie_", TMDBID: i64p(1), IsMovie: boolp(true),
		OriginalTitle: strp("Best Movie"), Year: intp(2020),
		VoteAverage: floatp(8.7), VoteCount: i64p(5000), Popularity: floatp(50),
	}, nil, inWeek)

	seedShowWithSession(t, store, channelID, catalog.ShowData{
		SearchTitle: "_noise_movie_", TMDBID: i64p(2), IsMovie: boolp(true),
		OriginalTitle: strp("Noise Movie"), Year: intp(2021),
		VoteAverage: floatp(9.9), VoteCount: i64p(10), Popularity: floatp(5),
	}, nil, inWeek.Add(time.Hour))

	seriesID := seedShowWithSession(t, store, channelID, catalog.ShowData{
		SearchTitle: "_strong_series_", TMDBID: i64p(3), IsMovie: boolp(false),
		OriginalTitle: strp("Strong Series"), Year: intp(2024),
		VoteAverage: floatp(8.1), VoteCount: i64p(900), Popularity: floatp(70),
	}, intp(2), inWeek.Add(2*time.Hour))

	// Premieres next week: a movie and a series with a season premiere.
	premiereMovieID := seedShowWithSession(t, store, channelID, catalog.ShowData{
		SearchTitle: "_fresh_movie_", TMDBID: i64p(4), IsMovie: boolp(true),
		OriginalTitle: strp("Fresh Movie"), Year: intp(2026),
		Popularity:   floatp(90),
		PremiereDate: timep(nextWeek.Truncate(24 * time.Hour)),
	}, nil, nextWeek)

	premiereSeriesID := seedShowWithSession(t, store, channelID, catalog.ShowData{
		SearchTitle: "_fresh_series_", TMDBID: i64p(5), IsMovie: boolp(false),
		OriginalTitle: strp("Fresh Series"), Year: intp(2026),
		Popularity:     floatp(80),
		PremiereDate:   timep(nextWeek.Truncate(24 * time.Hour)),
		SeasonPremiere: timep(nextWeek.Truncate(24 * time.Hour)),
	}, intp(1), nextWeek.Add(time.Hour))

	// A series premiering next week without season_premiere stays out.
	seedShowWithSession(t, store, channelID, catalog.ShowData{
		SearchTitle: "_rerun_series_", TMDBID: i64p(6), IsMovie: boolp(false),
		OriginalTitle: strp("Rerun Series"), Year: intp(2018),
		Popularity:   floatp(95),
		PremiereDate: timep(nextWeek.Truncate(24 * time.Hour)),
	}, intp(4), nextWeek.Add(2*time.Hour))

	calc := New(store)
	calc.now = func() time.Time { return now }
	if err := calc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	score, err := store.HighlightFor(ctx, catalog.HighlightScore, 2026, 36)
	if err != nil {
		t.Fatalf("score highlight: %v", err)
	}
	if len(score.ShowIDs) != 2 {
		t.Fatalf("score list = %v", score.ShowIDs)
	}
	if score.ShowIDs[0] != bestID || score.ShowIDs[1] != seriesID {
		t.Fatalf("score order = %v, want [%d %d]", score.ShowIDs, bestID, seriesID)
	}
	if score.Seasons[0] != nil {
		t.Fatal("movie entry must carry a nil season")
	}
	if score.Seasons[1] == nil || *score.Seasons[1] != 2 {
		t.Fatalf("series season = %v", score.Seasons[1])
	}

	fresh, err := store.HighlightFor(ctx, catalog.HighlightNew, 2026, 36)
	if err != nil {
		t.Fatalf("new highlight: %v", err)
	}
	if len(fresh.ShowIDs) != 2 {
		t.Fatalf("new list = %v", fresh.ShowIDs)
	}
	if fresh.ShowIDs[0] != premiereMovieID || fresh.ShowIDs[1] != premiereSeriesID {
		t.Fatalf("new list = %v, want [%d %d]", fresh.ShowIDs, premiereMovieID, premiereSeriesID)
	}

	// Week 37 lists exist as well.
	if _, err := store.HighlightFor(ctx, catalog.HighlightScore, 2026, 37); err != nil {
		t.Fatalf("week 37 score: %v", err)
	}

	// Re-running overwrites rather than appending.
	if err := calc.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	again, err := store.HighlightFor(ctx, catalog.HighlightScore, 2026, 36)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if len(again.ShowIDs) != len(score.ShowIDs) {
		t.Fatalf("rerun list = %v", again.ShowIDs)
	}
}

func TestIsoWeekStart(t *testing.T) {
	// A Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 9, 6, 23, 0, 0, 0, time.UTC)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := isoWeekStart(sunday); !got.Equal(want) {
		t.Fatalf("isoWeekStart = %s, want %s", got, want)
	}
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := isoWeekStart(monday); !got.Equal(want) {
		t.Fatalf("isoWeekStart on Monday = %s, want %s", got, want)
	}
}
