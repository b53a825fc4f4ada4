package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertUser adds a user. The e-mail address must be unique.
func (s *Store) InsertUser(ctx context.Context, user User) (int64, error) {
	language := user.Language
	if language == "" {
		language = "pt"
	}
	res, err := s.exec.ExecContext(ctx,
		`INSERT INTO users (email, language) VALUES (?, ?)`, user.Email, language)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: user %q", ErrDuplicate, user.Email)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UserByID fetches one user.
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.exec.QueryRowContext(ctx,
		`SELECT id, email, language FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Email, &user.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// InsertReminder registers a reminder. (session, user) is unique; a second
// registration surfaces as ErrDuplicate.
func (s *Store) InsertReminder(ctx context.Context, reminder Reminder) (int64, error) {
	res, err := s.exec.ExecContext(ctx,
		`INSERT INTO reminders (session_id, user_id, anticipation_minutes)
         VALUES (?, ?, ?)`,
		reminder.SessionID, reminder.UserID, reminder.AnticipationMinutes)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: reminder", ErrDuplicate)
		}
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// DeleteReminder removes one reminder by id.
func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	_, err := s.exec.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	return nil
}

// RemindersDue returns every reminder joined with its session and user,
// ordered by air time. The dispatcher decides which have elapsed.
func (s *Store) RemindersDue(ctx context.Context) ([]ReminderDue, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT r.id, r.session_id, r.user_id, r.anticipation_minutes,
                ss.id, ss.show_data_id, ss.channel_id, ss.season, ss.episode,
                ss.date_time, ss.audio_language, ss.extended_cut, ss.update_timestamp,
                u.id, u.email, u.language
         FROM reminders r
         JOIN show_sessions ss ON ss.id = r.session_id
         JOIN users u ON u.id = r.user_id
         ORDER BY ss.date_time`)
	if err != nil {
		return nil, fmt.Errorf("reminders due: %w", err)
	}
	defer rows.Close()

	var due []ReminderDue
	for rows.Next() {
		var entry ReminderDue
		var (
			season, episode sql.NullInt64
			audioLanguage   sql.NullString
			extendedCut     int
			dateTime        string
			updateTS        string
		)
		if err := rows.Scan(
			&entry.Reminder.ID, &entry.Reminder.SessionID, &entry.Reminder.UserID,
			&entry.Reminder.AnticipationMinutes,
			&entry.Session.ID, &entry.Session.ShowDataID, &entry.Session.ChannelID,
			&season, &episode, &dateTime, &audioLanguage, &extendedCut, &updateTS,
			&entry.User.ID, &entry.User.Email, &entry.User.Language,
		); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
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
		due = append(due, entry)
	}
	return due, rows.Err()
}

// RemindersForSession returns the reminders attached to a session joined
// with their users, so a deleted session can notify affected users.
func (s *Store) RemindersForSession(ctx context.Context, sessionID int64) ([]ReminderDue, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT r.id, r.session_id, r.user_id, r.anticipation_minutes,
                u.id, u.email, u.language
         FROM reminders r
         JOIN users u ON u.id = r.user_id
         WHERE r.session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reminders for session: %w", err)
	}
	defer rows.Close()

	var result []ReminderDue
	for rows.Next() {
		var entry ReminderDue
		if err := rows.Scan(
			&entry.Reminder.ID, &entry.Reminder.SessionID, &entry.Reminder.UserID,
			&entry.Reminder.AnticipationMinutes,
			&entry.User.ID, &entry.User.Email, &entry.User.Language,
		); err != nil {
			return nil, fmt.Errorf("scan session reminder: %w", err)
		}
		entry.Session.ID = sessionID
		result = append(result, entry)
	}
	return result, rows.Err()
}
