package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const sessionColumns = `id, show_data_id, channel_id, season, episode, date_time,
    audio_language, extended_cut, update_timestamp`

// SessionWithin finds a session with the same identity whose air time lies
// within the dedup window around dateTime.
func (s *Store) SessionWithin(ctx context.Context, channelID, showID int64, season, episode *int, dateTime time.Time, window time.Duration) (*ShowSession, error) {
	row := s.exec.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM show_sessions
         WHERE channel_id = ? AND show_data_id = ?
           AND COALESCE(season, -1) = COALESCE(?, -1)
           AND COALESCE(episode, -1) = COALESCE(?, -1)
           AND date_time >= ? AND date_time <= ?
         ORDER BY date_time LIMIT 1`,
		channelID, showID, nullInt(season), nullInt(episode),
		fmtTime(dateTime.Add(-window)), fmtTime(dateTime.Add(window)))
	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return session, err
}

// InsertSession registers a new session. A unique violation surfaces as
// ErrDuplicate so callers can treat it as a concurrent-insert race.
func (s *Store) InsertSession(ctx context.Context, session *ShowSession) (*ShowSession, error) {
	now := time.Now().UTC()
	res, err := s.exec.ExecContext(ctx,
		`INSERT INTO show_sessions (
            show_data_id, channel_id, season, episode, date_time,
            audio_language, extended_cut, update_timestamp
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ShowDataID, session.ChannelID,
		nullInt(session.Season), nullInt(session.Episode),
		fmtTime(session.DateTime), nullString(session.AudioLanguage),
		boolInt(session.ExtendedCut), fmtTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: session", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	session.ID = id
	session.UpdateTimestamp = now
	return session, nil
}

// RefreshSession moves an existing session to a new air time and bumps its
// update timestamp so the end-of-file sweep keeps it.
func (s *Store) RefreshSession(ctx context.Context, sessionID int64, dateTime time.Time) error {
	_, err := s.exec.ExecContext(ctx,
		`UPDATE show_sessions SET date_time = ?, update_timestamp = ? WHERE id = ?`,
		fmtTime(dateTime), fmtTime(time.Now().UTC()), sessionID)
	if err != nil {
		return fmt.Errorf("refresh session %d: %w", sessionID, err)
	}
	return nil
}

// SessionByID fetches one session.
func (s *Store) SessionByID(ctx context.Context, id int64) (*ShowSession, error) {
	row := s.exec.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM show_sessions WHERE id = ?`, id)
	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return session, err
}

// StaleSessions lists sessions on the given channels inside [from, to]
// whose update timestamp predates cutoff. These are the rows the
// end-of-file sweep will delete.
func (s *Store) StaleSessions(ctx context.Context, channelIDs []int64, from, to, cutoff time.Time) ([]ShowSession, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(channelIDs)), ",")
	args := make([]any, 0, len(channelIDs)+3)
	for _, id := range channelIDs {
		args = append(args, id)
	}
	args = append(args, fmtTime(from), fmtTime(to), fmtTime(cutoff))

	rows, err := s.exec.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM show_sessions
         WHERE channel_id IN (`+placeholders+`)
           AND date_time >= ? AND date_time <= ?
           AND update_timestamp < ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("stale sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// DeleteSession removes a session; reminders cascade.
func (s *Store) DeleteSession(ctx context.Context, sessionID int64) error {
	_, err := s.exec.ExecContext(ctx, `DELETE FROM show_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session %d: %w", sessionID, err)
	}
	return nil
}

// DeleteAgedSessions drops every session older than before, regardless of
// channel. Returns the number of rows removed.
func (s *Store) DeleteAgedSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.exec.ExecContext(ctx,
		`DELETE FROM show_sessions WHERE date_time < ?`, fmtTime(before))
	if err != nil {
		return 0, fmt.Errorf("delete aged sessions: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// SessionWithShow joins a session to its show and channel for alarm and
// search surfaces.
type SessionWithShow struct {
	Session     ShowSession
	Show        ShowData
	ChannelName string
}

// SessionsUpdatedSince returns sessions whose update timestamp is
// strictly after the watermark, joined with their show rows. Used by
// alarm scans: the watermark is taken at scan time, so rows stamped in
// the watermark's own second were already seen.
func (s *Store) SessionsUpdatedSince(ctx context.Context, since time.Time) ([]SessionWithShow, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT ss.id, ss.show_data_id, ss.channel_id, ss.season, ss.episode,
                ss.date_time, ss.audio_language, ss.extended_cut, ss.update_timestamp,
                `+prefixedShowColumns("sd")+`, c.name
         FROM show_sessions ss
         JOIN show_data sd ON sd.id = ss.show_data_id
         JOIN channels c ON c.id = ss.channel_id
         WHERE ss.update_timestamp > ?
         ORDER BY ss.date_time`, fmtTime(since))
	if err != nil {
		return nil, fmt.Errorf("sessions updated since: %w", err)
	}
	defer rows.Close()

	var result []SessionWithShow
	for rows.Next() {
		entry, err := scanSessionWithShow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func prefixedShowColumns(alias string) string {
	cols := strings.Split(showDataColumns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

func scanSessionWithShow(rows *sql.Rows) (*SessionWithShow, error) {
	var entry SessionWithShow
	var (
		season, episode sql.NullInt64
		audioLanguage   sql.NullString
		extendedCut     int
		dateTime        string
		updateTS        string

		tmdbID, voteCount                                 sql.NullInt64
		isMovie                                           sql.NullInt64
		origTitle, locTitle, synopsis, genre, subgenre    sql.NullString
		audioLangs, countries, ageClass, cast, director   sql.NullString
		creators, posterURL, premiereDate, seasonPremiere sql.NullString
		year, durationMinutes, numberSeasons              sql.NullInt64
		voteAverage, popularity                           sql.NullFloat64
		updatedAt                                         string
	)
	show := &entry.Show
	if err := rows.Scan(
		&entry.Session.ID, &entry.Session.ShowDataID, &entry.Session.ChannelID,
		&season, &episode, &dateTime, &audioLanguage, &extendedCut, &updateTS,
		&show.ID, &show.SearchTitle, &tmdbID, &isMovie, &origTitle, &locTitle,
		&synopsis, &year, &genre, &subgenre, &audioLangs, &countries, &ageClass,
		&durationMinutes, &cast, &director, &creators, &numberSeasons,
		&voteAverage, &voteCount, &popularity, &premiereDate, &seasonPremiere,
		&posterURL, &updatedAt,
		&entry.ChannelName,
	); err != nil {
		return nil, fmt.Errorf("scan session with show: %w", err)
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

	var err error
	if show.PremiereDate, err = timePtr(premiereDate); err != nil {
		return nil, err
	}
	if show.SeasonPremiere, err = timePtr(seasonPremiere); err != nil {
		return nil, err
	}
	if show.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	entry.Session.Season = intPtr(season)
	entry.Session.Episode = intPtr(episode)
	entry.Session.AudioLanguage = stringPtr(audioLanguage)
	entry.Session.ExtendedCut = extendedCut != 0
	if entry.Session.DateTime, err = parseTime(dateTime); err != nil {
		return nil, err
	}
	if entry.Session.UpdateTimestamp, err = parseTime(updateTS); err != nil {
		return nil, err
	}
	return &entry, nil
}

func collectSessions(rows *sql.Rows) ([]ShowSession, error) {
	var sessions []ShowSession
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

func scanSession(scan func(dest ...any) error) (*ShowSession, error) {
	var session ShowSession
	var (
		season, episode sql.NullInt64
		audioLanguage   sql.NullString
		extendedCut     int
		dateTime        string
		updateTS        string
	)
	err := scan(&session.ID, &session.ShowDataID, &session.ChannelID,
		&season, &episode, &dateTime, &audioLanguage, &extendedCut, &updateTS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.Season = intPtr(season)
	session.Episode = intPtr(episode)
	session.AudioLanguage = stringPtr(audioLanguage)
	session.ExtendedCut = extendedCut != 0
	if session.DateTime, err = parseTime(dateTime); err != nil {
		return nil, err
	}
	if session.UpdateTimestamp, err = parseTime(updateTS); err != nil {
		return nil, err
	}
	return &session, nil
}
