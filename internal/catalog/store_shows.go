package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"
)

const showDataColumns = `id, search_title, tmdb_id, is_movie, original_title, localized_title,
    synopsis, year, genre, subgenre, audio_languages, countries, age_classification,
    duration_minutes, cast_members, director, creators, number_seasons,
    vote_average, vote_count, popularity, premiere_date, season_premiere, poster_url, updated_at`

// InsertShowData inserts a new show row and returns it with its id set.
func (s *Store) InsertShowData(ctx context.Context, show *ShowData) (*ShowData, error) {
	now := time.Now().UTC()
	res, err := s.exec.ExecContext(ctx,
		`INSERT INTO show_data (
            search_title, tmdb_id, is_movie, original_title, localized_title,
            synopsis, year, genre, subgenre, audio_languages, countries,
            age_classification, duration_minutes, cast_members, director,
            creators, number_seasons, vote_average, vote_count, popularity,
            premiere_date, season_premiere, poster_url, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		show.SearchTitle,
		nullInt64(show.TMDBID),
		nullBool(show.IsMovie),
		nullString(show.OriginalTitle),
		nullString(show.LocalizedTitle),
		nullString(show.Synopsis),
		nullInt(show.Year),
		nullString(show.Genre),
		nullString(show.Subgenre),
		nullString(show.AudioLanguages),
		nullString(show.Countries),
		nullString(show.AgeClassification),
		nullInt(show.DurationMinutes),
		nullString(show.Cast),
		nullString(show.Director),
		nullString(show.Creators),
		nullInt(show.NumberSeasons),
		nullFloat(show.VoteAverage),
		nullInt64(show.VoteCount),
		nullFloat(show.Popularity),
		nullTime(show.PremiereDate),
		nullTime(show.SeasonPremiere),
		nullString(show.PosterURL),
		fmtTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("insert show data: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.ShowDataByID(ctx, id)
}

// UpdateShowData rewrites every mutable column of the row.
func (s *Store) UpdateShowData(ctx context.Context, show *ShowData) error {
	now := time.Now().UTC()
	_, err := s.exec.ExecContext(ctx,
		`UPDATE show_data SET
            search_title = ?, tmdb_id = ?, is_movie = ?, original_title = ?,
            localized_title = ?, synopsis = ?, year = ?, genre = ?, subgenre = ?,
            audio_languages = ?, countries = ?, age_classification = ?,
            duration_minutes = ?, cast_members = ?, director = ?, creators = ?,
            number_seasons = ?, vote_average = ?, vote_count = ?, popularity = ?,
            premiere_date = ?, season_premiere = ?, poster_url = ?, updated_at = ?
         WHERE id = ?`,
		show.SearchTitle,
		nullInt64(show.TMDBID),
		nullBool(show.IsMovie),
		nullString(show.OriginalTitle),
		nullString(show.LocalizedTitle),
		nullString(show.Synopsis),
		nullInt(show.Year),
		nullString(show.Genre),
		nullString(show.Subgenre),
		nullString(show.AudioLanguages),
		nullString(show.Countries),
		nullString(show.AgeClassification),
		nullInt(show.DurationMinutes),
		nullString(show.Cast),
		nullString(show.Director),
		nullString(show.Creators),
		nullInt(show.NumberSeasons),
		nullFloat(show.VoteAverage),
		nullInt64(show.VoteCount),
		nullFloat(show.Popularity),
		nullTime(show.PremiereDate),
		nullTime(show.SeasonPremiere),
		nullString(show.PosterURL),
		fmtTime(now),
		show.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("update show data %d: %w", show.ID, err)
	}
	show.UpdatedAt = now
	return nil
}

// ShowDataByID fetches one show row.
func (s *Store) ShowDataByID(ctx context.Context, id int64) (*ShowData, error) {
	return s.scanShowData(s.exec.QueryRowContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data WHERE id = ?`, id))
}

// ShowDataByTMDBID fetches the show attached to a TMDB id.
func (s *Store) ShowDataByTMDBID(ctx context.Context, tmdbID int64) (*ShowData, error) {
	return s.scanShowData(s.exec.QueryRowContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data WHERE tmdb_id = ?`, tmdbID))
}

// ShowDataByOriginalTitleYear fetches the show identified by the
// functionally-unique (original_title, year) pair. The lookup deliberately
// ignores is_movie, matching long-standing ingest behavior.
func (s *Store) ShowDataByOriginalTitleYear(ctx context.Context, originalTitle string, year int) (*ShowData, error) {
	return s.scanShowData(s.exec.QueryRowContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data
         WHERE original_title = ? COLLATE NOCASE AND year = ?`, originalTitle, year))
}

// PlaceholderBySearchTitle fetches a placeholder row (no original title,
// year, or TMDB id) whose search key equals the given one.
func (s *Store) PlaceholderBySearchTitle(ctx context.Context, searchTitle string) (*ShowData, error) {
	return s.scanShowData(s.exec.QueryRowContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data
         WHERE search_title = ? COLLATE NOCASE
           AND original_title IS NULL AND year IS NULL AND tmdb_id IS NULL`,
		searchTitle))
}

// SearchShowsByKeyPattern returns shows whose search key matches the given
// regular expression, whole-token anchored by the caller.
func (s *Store) SearchShowsByKeyPattern(ctx context.Context, pattern string) ([]ShowData, error) {
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("search pattern: %w", err)
	}
	rows, err := s.exec.QueryContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data WHERE search_title REGEXP ?`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search shows: %w", err)
	}
	defer rows.Close()
	return s.collectShows(rows)
}

// AttachTMDBID sets the TMDB id on a show row. A unique violation means
// another row already owns the id and surfaces as ErrDuplicate.
func (s *Store) AttachTMDBID(ctx context.Context, showID, tmdbID int64) error {
	_, err := s.exec.ExecContext(ctx,
		`UPDATE show_data SET tmdb_id = ?, updated_at = ? WHERE id = ?`,
		tmdbID, fmtTime(time.Now().UTC()), showID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tmdb id %d", ErrDuplicate, tmdbID)
		}
		return fmt.Errorf("attach tmdb id: %w", err)
	}
	return nil
}

// ShowsNeedingVoteRefresh returns shows among ids whose metadata is older
// than the cutoff, for the weekly highlight refresh.
func (s *Store) ShowsNeedingVoteRefresh(ctx context.Context, cutoff time.Time) ([]ShowData, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data
         WHERE tmdb_id IS NOT NULL AND updated_at < ?`, fmtTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("shows needing refresh: %w", err)
	}
	defer rows.Close()
	return s.collectShows(rows)
}

// AllShows streams every show row, used by search-key rebuilds.
func (s *Store) AllShows(ctx context.Context) ([]ShowData, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT `+showDataColumns+` FROM show_data ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("all shows: %w", err)
	}
	defer rows.Close()
	return s.collectShows(rows)
}

// UpdateSearchTitle rewrites just the search key of a show.
func (s *Store) UpdateSearchTitle(ctx context.Context, showID int64, searchTitle string) error {
	_, err := s.exec.ExecContext(ctx,
		`UPDATE show_data SET search_title = ? WHERE id = ?`, searchTitle, showID)
	if err != nil {
		return fmt.Errorf("update search title: %w", err)
	}
	return nil
}

func (s *Store) collectShows(rows *sql.Rows) ([]ShowData, error) {
	var shows []ShowData
	for rows.Next() {
		show, err := scanShowFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		shows = append(shows, *show)
	}
	return shows, rows.Err()
}

func (s *Store) scanShowData(row *sql.Row) (*ShowData, error) {
	show, err := scanShowFields(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return show, err
}

func scanShowFields(scan func(dest ...any) error) (*ShowData, error) {
	var show ShowData
	var (
		tmdbID, voteCount                                       sql.NullInt64
		isMovie                                                 sql.NullInt64
		origTitle, locTitle, synopsis, genre, subgenre          sql.NullString
		audioLangs, countries, ageClass, cast, director         sql.NullString
		creators, posterURL, premiereDate, seasonPremiere       sql.NullString
		year, durationMinutes, numberSeasons                    sql.NullInt64
		voteAverage, popularity                                 sql.NullFloat64
		updatedAt                                               string
	)
	err := scan(
		&show.ID, &show.SearchTitle, &tmdbID, &isMovie, &origTitle, &locTitle,
		&synopsis, &year, &genre, &subgenre, &audioLangs, &countries, &ageClass,
		&durationMinutes, &cast, &director, &creators, &numberSeasons,
		&voteAverage, &voteCount, &popularity, &premiereDate, &seasonPremiere,
		&posterURL, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("scan show data: %w", err)
	}

	show.TMDBID = int64Ptr(tmdbID)
	show.IsMovie = boolPtr(isMovie)
	show.OriginalTitle = stringPtr(origTitle)
	show.LocalizedTitle = stringPtr(locTitle)
	show.Synopsis = stringPtr(synopsis)
	show.Year = intPtr(year)
	show.Genre = stringPtr(genre)
	show.Subgenre = stringPtr(subgenre)
	show.AudioLanguages = stringPtr(audioLangs)
	show.Countries = stringPtr(countries)
	show.AgeClassification = stringPtr(ageClass)
	show.DurationMinutes = intPtr(durationMinutes)
	show.Cast = stringPtr(cast)
	show.Director = stringPtr(director)
	show.Creators = stringPtr(creators)
	show.NumberSeasons = intPtr(numberSeasons)
	show.VoteAverage = floatPtr(voteAverage)
	show.VoteCount = int64Ptr(voteCount)
	show.Popularity = floatPtr(popularity)
	show.PosterURL = stringPtr(posterURL)

	if show.PremiereDate, err = timePtr(premiereDate); err != nil {
		return nil, err
	}
	if show.SeasonPremiere, err = timePtr(seasonPremiere); err != nil {
		return nil, err
	}
	if show.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &show, nil
}
