package catalog

import (
	"context"
	"fmt"
	"time"
)

// Counts summarizes table sizes for the status command.
type Counts struct {
	Channels         int64
	Shows            int64
	Placeholders     int64
	UnmatchedShows   int64
	Sessions         int64
	FutureSessions   int64
	Corrections      int64
	CacheEntries     int64
	Users            int64
	Reminders        int64
	Alarms           int64
	Highlights       int64
	StreamingEntries int64
}

// CountRows collects row counts across the catalog in one pass.
func (s *Store) CountRows(ctx context.Context) (*Counts, error) {
	var c Counts
	now := fmtTime(time.Now().UTC())
	queries := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&c.Channels, `SELECT COUNT(*) FROM channels`, nil},
		{&c.Shows, `SELECT COUNT(*) FROM show_data`, nil},
		{&c.Placeholders, `SELECT COUNT(*) FROM show_data
            WHERE original_title IS NULL AND year IS NULL AND tmdb_id IS NULL`, nil},
		{&c.UnmatchedShows, `SELECT COUNT(*) FROM show_data WHERE tmdb_id IS NULL`, nil},
		{&c.Sessions, `SELECT COUNT(*) FROM show_sessions`, nil},
		{&c.FutureSessions, `SELECT COUNT(*) FROM show_sessions WHERE date_time >= ?`, []any{now}},
		{&c.Corrections, `SELECT COUNT(*) FROM channel_show_data_corrections`, nil},
		{&c.CacheEntries, `SELECT COUNT(*) FROM cache`, nil},
		{&c.Users, `SELECT COUNT(*) FROM users`, nil},
		{&c.Reminders, `SELECT COUNT(*) FROM reminders`, nil},
		{&c.Alarms, `SELECT COUNT(*) FROM alarms`, nil},
		{&c.Highlights, `SELECT COUNT(*) FROM highlights`, nil},
		{&c.StreamingEntries, `SELECT COUNT(*) FROM streaming_service_shows`, nil},
	}
	for _, q := range queries {
		if err := s.exec.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count rows: %w", err)
		}
	}
	return &c, nil
}

// Vacuum reclaims free pages. Must run outside a transaction.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, isTx := s.exec.(interface{ Commit() error }); isTx {
		return fmt.Errorf("vacuum inside transaction")
	}
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
