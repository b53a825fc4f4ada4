package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UpsertHighlight persists a weekly highlight list. Re-running a week
// overwrites the stored list.
func (s *Store) UpsertHighlight(ctx context.Context, h Highlight) error {
	showIDs, err := json.Marshal(h.ShowIDs)
	if err != nil {
		return fmt.Errorf("marshal show ids: %w", err)
	}
	seasons, err := json.Marshal(h.Seasons)
	if err != nil {
		return fmt.Errorf("marshal seasons: %w", err)
	}
	_, err = s.exec.ExecContext(ctx,
		`INSERT INTO highlights (key, year, week, show_ids, seasons)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (key, year, week) DO UPDATE SET
             show_ids = excluded.show_ids,
             seasons = excluded.seasons`,
		string(h.Key), h.Year, h.Week, string(showIDs), string(seasons))
	if err != nil {
		return fmt.Errorf("upsert highlight %s %d/%d: %w", h.Key, h.Year, h.Week, err)
	}
	return nil
}

// HighlightFor reads one stored weekly list, or ErrNotFound.
func (s *Store) HighlightFor(ctx context.Context, key HighlightKey, year, week int) (*Highlight, error) {
	var h Highlight
	var showIDs, seasons string
	err := s.exec.QueryRowContext(ctx,
		`SELECT id, key, year, week, show_ids, seasons
         FROM highlights WHERE key = ? AND year = ? AND week = ?`,
		string(key), year, week).
		Scan(&h.ID, &h.Key, &h.Year, &h.Week, &showIDs, &seasons)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan highlight: %w", err)
	}
	if err := json.Unmarshal([]byte(showIDs), &h.ShowIDs); err != nil {
		return nil, fmt.Errorf("unmarshal show ids: %w", err)
	}
	if err := json.Unmarshal([]byte(seasons), &h.Seasons); err != nil {
		return nil, fmt.Errorf("unmarshal seasons: %w", err)
	}
	return &h, nil
}

// ScoreCandidate is a show airing in the target week that clears the
// vote-count floor, ordered best-first.
type ScoreCandidate struct {
	Show   ShowData
	Season *int
}

// ScoreCandidates returns shows of the given kind with at least one
// session in [from, to) and vote_count >= minVotes, ordered by vote
// average descending, capped at limit.
func (s *Store) ScoreCandidates(ctx context.Context, isMovie bool, from, to time.Time, minVotes int64, limit int) ([]ScoreCandidate, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT `+prefixedShowColumns("sd")+`, MIN(ss.season)
         FROM show_data sd
         JOIN show_sessions ss ON ss.show_data_id = sd.id
         WHERE sd.is_movie = ?
           AND ss.date_time >= ? AND ss.date_time < ?
           AND sd.vote_count >= ?
         GROUP BY sd.id
         ORDER BY sd.vote_average DESC
         LIMIT ?`,
		boolInt(isMovie), fmtTime(from), fmtTime(to), minVotes, limit)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// NewCandidates returns shows of the given kind premiering inside
// [from, to): a session airs in the window and the premiere date falls in
// it. Series additionally require a season premiere date.
func (s *Store) NewCandidates(ctx context.Context, isMovie bool, from, to time.Time, limit int) ([]ScoreCandidate, error) {
	seriesFilter := ""
	if !isMovie {
		seriesFilter = " AND sd.season_premiere IS NOT NULL"
	}
	rows, err := s.exec.QueryContext(ctx,
		`SELECT `+prefixedShowColumns("sd")+`, MIN(ss.season)
         FROM show_data sd
         JOIN show_sessions ss ON ss.show_data_id = sd.id
         WHERE sd.is_movie = ?
           AND ss.date_time >= ? AND ss.date_time < ?
           AND sd.premiere_date >= ? AND sd.premiere_date < ?`+seriesFilter+`
         GROUP BY sd.id
         ORDER BY sd.popularity DESC
         LIMIT ?`,
		boolInt(isMovie), fmtTime(from), fmtTime(to), fmtTime(from), fmtTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("new candidates: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func collectCandidates(rows *sql.Rows) ([]ScoreCandidate, error) {
	var result []ScoreCandidate
	for rows.Next() {
		var season sql.NullInt64
		show, err := scanShowFields(func(dest ...any) error {
			return rows.Scan(append(dest, &season)...)
		})
		if err != nil {
			return nil, err
		}
		result = append(result, ScoreCandidate{Show: *show, Season: intPtr(season)})
	}
	return result, rows.Err()
}
