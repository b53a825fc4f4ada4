package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"aerial/internal/catalog"
	"aerial/internal/language"
	"aerial/internal/logging"
	"aerial/internal/parsers"
	"aerial/internal/searchkey"
	"aerial/internal/tmdb"
)

// PosterSource resolves an IMDb id to a poster URL, "" when unavailable.
// *omdb.Client satisfies it.
type PosterSource interface {
	PosterURL(ctx context.Context, imdbID string) string
}

// Matcher resolves rows to catalog shows. Safe for use from a single job
// goroutine; clone with WithStore to bind a transaction.
type Matcher struct {
	store   *catalog.Store
	search  tmdb.Searcher
	posters PosterSource
	logger  *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithPosterSource enables poster enrichment.
func WithPosterSource(source PosterSource) Option {
	return func(m *Matcher) { m.posters = source }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "matcher")
		}
	}
}

// New builds a Matcher. search may be nil, in which case TMDB resolution
// is skipped and unmatched rows become plain catalog rows.
func New(store *catalog.Store, search tmdb.Searcher, opts ...Option) *Matcher {
	m := &Matcher{store: store, search: search, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithStore returns a copy bound to another store, typically the
// transaction-bound clone a job runs under.
func (m *Matcher) WithStore(store *catalog.Store) *Matcher {
	clone := *m
	clone.store = store
	return &clone
}

// Match resolves a row to a show id. newShow is true when the call created
// a fresh catalog row through TMDB resolution or as an unmatched fallback.
//
// The decision ladder: per-channel correction, (original_title, year)
// lookup, placeholder search key, TMDB resolution. A row found by
// (original_title, year) but still missing its TMDB id continues into
// resolution so it gets enriched in place.
func (m *Matcher) Match(ctx context.Context, channel *catalog.Channel, row parsers.Row) (*catalog.ShowData, bool, error) {
	correction, err := m.store.FindCorrection(ctx, probeFromRow(channel.ID, row))
	if err == nil {
		show, err := m.store.ShowDataByID(ctx, correction.ShowDataID)
		if err != nil {
			return nil, false, fmt.Errorf("correction target %d: %w", correction.ShowDataID, err)
		}
		return show, false, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return nil, false, err
	}

	// The lookup deliberately ignores is_movie: source files misflag
	// works often enough that title and year are the trusted identity.
	var existing *catalog.ShowData
	if row.OriginalTitle != nil && row.Year != nil {
		show, err := m.store.ShowDataByOriginalTitleYear(ctx, *row.OriginalTitle, *row.Year)
		switch {
		case err == nil && show.TMDBID != nil:
			return show, false, nil
		case err == nil:
			existing = show
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, false, err
		}
	}

	if existing == nil && row.OriginalTitle == nil && row.Year == nil {
		key := searchkey.MakeSearchable(row.LocalizedTitle)
		show, err := m.store.PlaceholderBySearchTitle(ctx, key)
		if err == nil {
			return show, false, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return nil, false, err
		}
	}

	detail := m.resolve(ctx, row)
	if detail != nil {
		if show, err := m.store.ShowDataByTMDBID(ctx, detail.ID); err == nil {
			if existing != nil && existing.ID != show.ID {
				m.logger.Warn("tmdb id already attached elsewhere",
					slog.Int64("show_id", existing.ID), slog.Int64("tmdb_id", detail.ID))
			}
			return show, false, nil
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return nil, false, err
		}

		if existing != nil {
			m.applyTMDB(ctx, existing, detail, row)
			if err := m.store.UpdateShowData(ctx, existing); err != nil {
				if errors.Is(err, catalog.ErrDuplicate) {
					return m.rereadByTMDBID(ctx, detail.ID)
				}
				return nil, false, err
			}
			return existing, false, nil
		}

		show := showFromRow(row)
		m.applyTMDB(ctx, show, detail, row)
		inserted, err := m.store.InsertShowData(ctx, show)
		if errors.Is(err, catalog.ErrDuplicate) {
			return m.rereadByTMDBID(ctx, detail.ID)
		}
		if err != nil {
			return nil, false, err
		}
		return inserted, true, nil
	}

	if existing != nil {
		return existing, false, nil
	}

	show := showFromRow(row)
	inserted, err := m.store.InsertShowData(ctx, show)
	if errors.Is(err, catalog.ErrDuplicate) {
		// A concurrent ingest created the same identity.
		if row.OriginalTitle != nil && row.Year != nil {
			found, rerr := m.store.ShowDataByOriginalTitleYear(ctx, *row.OriginalTitle, *row.Year)
			if rerr == nil {
				return found, false, nil
			}
		}
		found, rerr := m.store.PlaceholderBySearchTitle(ctx, show.SearchTitle)
		if rerr == nil {
			return found, false, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return inserted, true, nil
}

// Enrich forces a show onto a specific TMDB id and refreshes its metadata
// from the detail payload. Used by manual match corrections.
func (m *Matcher) Enrich(ctx context.Context, showID, tmdbID int64, isMovie bool) (*catalog.ShowData, error) {
	if m.search == nil {
		return nil, errors.New("tmdb lookups are not configured")
	}
	show, err := m.store.ShowDataByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	detail := m.search.GetShowByID(ctx, tmdbID, isMovie)
	if detail == nil {
		return nil, fmt.Errorf("tmdb id %d not found", tmdbID)
	}
	if err := m.store.AttachTMDBID(ctx, showID, tmdbID); err != nil {
		return nil, err
	}
	show.IsMovie = &isMovie
	m.applyTMDB(ctx, show, detail, parsers.Row{IsMovie: isMovie})
	if err := m.store.UpdateShowData(ctx, show); err != nil {
		return nil, err
	}
	return show, nil
}

// rereadByTMDBID resolves the losing side of an attach race.
func (m *Matcher) rereadByTMDBID(ctx context.Context, tmdbID int64) (*catalog.ShowData, bool, error) {
	show, err := m.store.ShowDataByTMDBID(ctx, tmdbID)
	if err != nil {
		return nil, false, err
	}
	return show, false, nil
}

// resolve runs the TMDB search ladder: declared year first, year-less
// retry, tie-break by votes, and exact case-folded original-title
// equality. Series additionally require a creator overlap when both sides
// list creators.
func (m *Matcher) resolve(ctx context.Context, row parsers.Row) *tmdb.Show {
	if m.search == nil || row.OriginalTitle == nil {
		return nil
	}
	title := *row.OriginalTitle

	year := 0
	if row.Year != nil {
		year = *row.Year
	}
	results := m.search.SearchShows(ctx, title, year, row.IsMovie)
	if len(results) == 0 && year != 0 {
		results = m.search.SearchShows(ctx, title, 0, row.IsMovie)
	}
	if len(results) == 0 {
		return nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		if results[i].Popularity != results[j].Popularity {
			return results[i].Popularity > results[j].Popularity
		}
		return results[i].VoteAverage > results[j].VoteAverage
	})

	for _, result := range results {
		if !strings.EqualFold(result.OriginalTitle(), title) {
			continue
		}
		detail := m.search.GetShowByID(ctx, result.ID, row.IsMovie)
		if detail == nil {
			continue
		}
		if !row.IsMovie && row.Creators != nil && len(detail.CreatedBy) > 0 &&
			!creatorOverlap(*row.Creators, detail.CreatedBy) {
			continue
		}
		return detail
	}
	return nil
}

// creatorOverlap reports whether any comma-separated name appears among
// the TMDB created_by entries.
func creatorOverlap(creators string, createdBy []tmdb.Creator) bool {
	for _, name := range strings.Split(creators, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, creator := range createdBy {
			if strings.EqualFold(creator.Name, name) {
				return true
			}
		}
	}
	return false
}

// probeFromRow maps the parsed fields onto a correction lookup.
func probeFromRow(channelID int64, row parsers.Row) catalog.CorrectionProbe {
	isMovie := row.IsMovie
	localized := row.LocalizedTitle
	return catalog.CorrectionProbe{
		ChannelID:      channelID,
		IsMovie:        &isMovie,
		OriginalTitle:  row.OriginalTitle,
		LocalizedTitle: &localized,
		Year:           row.Year,
		Directors:      row.Directors,
		Creators:       row.Creators,
		Subgenre:       row.Subgenre,
	}
}

// showFromRow builds the unmatched fallback row from parser fields only.
func showFromRow(row parsers.Row) *catalog.ShowData {
	keySource := row.LocalizedTitle
	if row.OriginalTitle != nil {
		keySource = *row.OriginalTitle
	}
	localized := row.LocalizedTitle
	isMovie := row.IsMovie
	return &catalog.ShowData{
		SearchTitle:       searchkey.MakeSearchable(keySource),
		IsMovie:           &isMovie,
		OriginalTitle:     row.OriginalTitle,
		LocalizedTitle:    &localized,
		Synopsis:          row.Synopsis,
		Year:              row.Year,
		Subgenre:          row.Subgenre,
		Countries:         row.Countries,
		AgeClassification: row.AgeClassification,
		DurationMinutes:   row.DurationMinutes,
		Cast:              row.Cast,
		Director:          row.Directors,
		Creators:          row.Creators,
	}
}

// applyTMDB overwrites the TMDB-derived fields of a show from the detail
// payload, keeping parser-supplied values where TMDB has nothing.
func (m *Matcher) applyTMDB(ctx context.Context, show *catalog.ShowData, detail *tmdb.Show, row parsers.Row) {
	show.TMDBID = &detail.ID

	if original := detail.OriginalTitle(); original != "" {
		show.OriginalTitle = &original
		show.SearchTitle = searchkey.MakeSearchable(original)
	}
	if show.LocalizedTitle == nil || *show.LocalizedTitle == "" {
		if display := detail.DisplayTitle(); display != "" {
			show.LocalizedTitle = &display
		}
	}
	if detail.Overview != "" {
		show.Synopsis = &detail.Overview
	}
	if premiere := parseAirDate(firstNonEmpty(detail.ReleaseDate, detail.FirstAirDate)); premiere != nil {
		show.PremiereDate = premiere
		if show.Year == nil {
			year := premiere.Year()
			show.Year = &year
		}
	}
	if names := genreNames(detail.Genres); names != "" {
		show.Genre = &names
	}
	if countries := countryNames(detail.Countries); countries != "" {
		show.Countries = &countries
	}
	if languages := languageCodes(detail.Languages); languages != "" {
		show.AudioLanguages = &languages
	}
	if minutes := runtimeMinutes(detail); minutes > 0 {
		show.DurationMinutes = &minutes
	}

	show.VoteAverage = &detail.VoteAverage
	show.VoteCount = &detail.VoteCount
	show.Popularity = &detail.Popularity

	if !row.IsMovie {
		if detail.NumberSeasons > 0 {
			seasons := detail.NumberSeasons
			show.NumberSeasons = &seasons
		}
		if premiere := latestSeasonPremiere(detail.Seasons); premiere != nil {
			show.SeasonPremiere = premiere
		}
		if creators := creatorNames(detail.CreatedBy); creators != "" {
			show.Creators = &creators
		}
	}

	if credits := m.search.GetCrew(ctx, detail.ID, row.IsMovie); credits != nil {
		if cast := castNames(credits.Cast, 10); cast != "" {
			show.Cast = &cast
		}
		if directors := strings.Join(credits.Directors(), ", "); directors != "" {
			show.Director = &directors
		}
	}

	if m.posters != nil {
		if imdbID := detail.IMDB(); imdbID != "" {
			if poster := m.posters.PosterURL(ctx, imdbID); poster != "" {
				show.PosterURL = &poster
			}
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseAirDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	at, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	at = at.UTC()
	return &at
}

func genreNames(genres []tmdb.Genre) string {
	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		if genre.Name != "" {
			names = append(names, genre.Name)
		}
	}
	return strings.Join(names, ", ")
}

func countryNames(countries []tmdb.Country) string {
	names := make([]string, 0, len(countries))
	for _, country := range countries {
		if country.Name != "" {
			names = append(names, country.Name)
		}
	}
	return strings.Join(names, ", ")
}

func languageCodes(languages []tmdb.Language) string {
	codes := make([]string, 0, len(languages))
	for _, lang := range languages {
		codes = append(codes, lang.ISO)
	}
	return strings.Join(language.NormalizeList(codes), ",")
}

func creatorNames(creators []tmdb.Creator) string {
	names := make([]string, 0, len(creators))
	for _, creator := range creators {
		if creator.Name != "" {
			names = append(names, creator.Name)
		}
	}
	return strings.Join(names, ", ")
}

func castNames(cast []tmdb.CastMember, limit int) string {
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	names := make([]string, 0, limit)
	for _, member := range cast {
		if member.Name == "" {
			continue
		}
		names = append(names, member.Name)
		if len(names) == limit {
			break
		}
	}
	return strings.Join(names, ", ")
}

// runtimeMinutes picks the movie runtime or the first episode run time.
func runtimeMinutes(detail *tmdb.Show) int {
	if detail.Runtime > 0 {
		return detail.Runtime
	}
	if len(detail.EpisodeRuns) > 0 {
		return detail.EpisodeRuns[0]
	}
	return 0
}

// latestSeasonPremiere is the air date of the highest-numbered season that
// has one.
func latestSeasonPremiere(seasons []tmdb.Season) *time.Time {
	var premiere *time.Time
	best := 0
	for _, season := range seasons {
		if season.SeasonNumber <= 0 || season.AirDate == "" {
			continue
		}
		if season.SeasonNumber >= best {
			if at := parseAirDate(season.AirDate); at != nil {
				best = season.SeasonNumber
				premiere = at
			}
		}
	}
	return premiere
}
