package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// InsertAlarm registers a standing query over future ingests.
func (s *Store) InsertAlarm(ctx context.Context, alarm Alarm) (int64, error) {
	res, err := s.exec.ExecContext(ctx,
		`INSERT INTO alarms (user_id, show_name, tmdb_id, is_movie, alarm_type, season, episode)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		alarm.UserID, alarm.ShowName, nullInt64(alarm.TMDBID), nullBool(alarm.IsMovie),
		string(alarm.Type), nullInt(alarm.Season), nullInt(alarm.Episode))
	if err != nil {
		return 0, fmt.Errorf("insert alarm: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListAlarms returns every alarm joined with its user.
func (s *Store) ListAlarms(ctx context.Context) ([]Alarm, map[int64]User, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT a.id, a.user_id, a.show_name, a.tmdb_id, a.is_movie,
                a.alarm_type, a.season, a.episode, u.email, u.language
         FROM alarms a
         JOIN users u ON u.id = a.user_id
         ORDER BY a.id`)
	if err != nil {
		return nil, nil, fmt.Errorf("list alarms: %w", err)
	}
	defer rows.Close()

	var alarms []Alarm
	users := make(map[int64]User)
	for rows.Next() {
		var alarm Alarm
		var (
			tmdbID, isMovie, season, episode sql.NullInt64
			alarmType, email, language       string
		)
		if err := rows.Scan(&alarm.ID, &alarm.UserID, &alarm.ShowName, &tmdbID,
			&isMovie, &alarmType, &season, &episode, &email, &language); err != nil {
			return nil, nil, fmt.Errorf("scan alarm: %w", err)
		}
		alarm.TMDBID = int64Ptr(tmdbID)
		alarm.IsMovie = boolPtr(isMovie)
		alarm.Type = AlarmType(alarmType)
		alarm.Season = intPtr(season)
		alarm.Episode = intPtr(episode)
		alarms = append(alarms, alarm)
		users[alarm.UserID] = User{ID: alarm.UserID, Email: email, Language: language}
	}
	return alarms, users, rows.Err()
}

// GetLastUpdate reads the single-row incremental-scan watermark.
func (s *Store) GetLastUpdate(ctx context.Context) (*LastUpdate, error) {
	var epgDate, alarmsAt sql.NullString
	err := s.exec.QueryRowContext(ctx,
		`SELECT epg_date, alarms_processed_at FROM last_update WHERE id = 1`).
		Scan(&epgDate, &alarmsAt)
	if err != nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}
	var lu LastUpdate
	if lu.EPGDate, err = timePtr(epgDate); err != nil {
		return nil, err
	}
	if lu.AlarmsProcessedAt, err = timePtr(alarmsAt); err != nil {
		return nil, err
	}
	return &lu, nil
}

// SetEPGDate records when the EPG ingest last ran.
func (s *Store) SetEPGDate(ctx context.Context, at time.Time) error {
	_, err := s.exec.ExecContext(ctx,
		`UPDATE last_update SET epg_date = ? WHERE id = 1`, fmtTime(at))
	if err != nil {
		return fmt.Errorf("set epg date: %w", err)
	}
	return nil
}

// SetAlarmsProcessedAt advances the alarm-scan watermark.
func (s *Store) SetAlarmsProcessedAt(ctx context.Context, at time.Time) error {
	_, err := s.exec.ExecContext(ctx,
		`UPDATE last_update SET alarms_processed_at = ? WHERE id = 1`, fmtTime(at))
	if err != nil {
		return fmt.Errorf("set alarms processed at: %w", err)
	}
	return nil
}
