package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertChannel inserts a channel or updates its name/flags when the
// acronym already exists. Returns the channel id.
func (s *Store) UpsertChannel(ctx context.Context, ch Channel) (int64, error) {
	_, err := s.exec.ExecContext(ctx,
		`INSERT INTO channels (acronym, name, adult, search_epg)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (acronym) DO UPDATE SET
             name = excluded.name,
             adult = excluded.adult,
             search_epg = excluded.search_epg`,
		ch.Acronym, ch.Name, boolInt(ch.Adult), boolInt(ch.SearchEPG))
	if err != nil {
		return 0, fmt.Errorf("upsert channel %q: %w", ch.Acronym, err)
	}
	existing, err := s.ChannelByAcronym(ctx, ch.Acronym)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// SeedChannels upserts the full channel seed list.
func (s *Store) SeedChannels(ctx context.Context, channels []Channel) error {
	for _, ch := range channels {
		if _, err := s.UpsertChannel(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// ChannelByName finds a channel by its display name.
func (s *Store) ChannelByName(ctx context.Context, name string) (*Channel, error) {
	return s.scanChannel(s.exec.QueryRowContext(ctx,
		`SELECT id, acronym, name, adult, search_epg FROM channels WHERE name = ?`, name))
}

// ChannelByAcronym finds a channel by its acronym.
func (s *Store) ChannelByAcronym(ctx context.Context, acronym string) (*Channel, error) {
	return s.scanChannel(s.exec.QueryRowContext(ctx,
		`SELECT id, acronym, name, adult, search_epg FROM channels WHERE acronym = ?`, acronym))
}

// ListChannels returns every channel ordered by name.
func (s *Store) ListChannels(ctx context.Context) ([]Channel, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT id, acronym, name, adult, search_epg FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var ch Channel
		var adult, searchEPG int
		if err := rows.Scan(&ch.ID, &ch.Acronym, &ch.Name, &adult, &searchEPG); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		ch.Adult = adult != 0
		ch.SearchEPG = searchEPG != 0
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// EPGChannels returns the channels flagged as searchable in the EPG source.
func (s *Store) EPGChannels(ctx context.Context) ([]Channel, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT id, acronym, name, adult, search_epg FROM channels WHERE search_epg = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list epg channels: %w", err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var ch Channel
		var adult, searchEPG int
		if err := rows.Scan(&ch.ID, &ch.Acronym, &ch.Name, &adult, &searchEPG); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		ch.Adult = adult != 0
		ch.SearchEPG = searchEPG != 0
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (s *Store) scanChannel(row *sql.Row) (*Channel, error) {
	var ch Channel
	var adult, searchEPG int
	err := row.Scan(&ch.ID, &ch.Acronym, &ch.Name, &adult, &searchEPG)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan channel: %w", err)
	}
	ch.Adult = adult != 0
	ch.SearchEPG = searchEPG != 0
	return &ch, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
