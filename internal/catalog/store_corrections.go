package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CorrectionProbe carries the parsed fields the matcher uses to look for a
// per-channel override. Nil correction fields are wildcards: a stored
// correction matches when every field it does carry equals the probe's.
type CorrectionProbe struct {
	ChannelID      int64
	IsMovie        *bool
	OriginalTitle  *string
	LocalizedTitle *string
	Year           *int
	Directors      *string
	Creators       *string
	Subgenre       *string
}

// FindCorrection returns the first correction on the channel matching the
// probe, or ErrNotFound.
func (s *Store) FindCorrection(ctx context.Context, probe CorrectionProbe) (*Correction, error) {
	rows, err := s.exec.QueryContext(ctx,
		`SELECT id, channel_id, show_data_id, is_movie, original_title,
                localized_title, year, directors, creators, subgenre
         FROM channel_show_data_corrections
         WHERE channel_id = ?`, probe.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("find correction: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		correction, err := scanCorrection(rows.Scan)
		if err != nil {
			return nil, err
		}
		if correctionMatches(correction, probe) {
			return correction, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// InsertCorrection records a per-channel override.
func (s *Store) InsertCorrection(ctx context.Context, c Correction) (int64, error) {
	res, err := s.exec.ExecContext(ctx,
		`INSERT INTO channel_show_data_corrections (
            channel_id, show_data_id, is_movie, original_title,
            localized_title, year, directors, creators, subgenre
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ChannelID, c.ShowDataID, nullBool(c.IsMovie),
		nullString(c.OriginalTitle), nullString(c.LocalizedTitle),
		nullInt(c.Year), nullString(c.Directors), nullString(c.Creators),
		nullString(c.Subgenre))
	if err != nil {
		return 0, fmt.Errorf("insert correction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func correctionMatches(c *Correction, probe CorrectionProbe) bool {
	if c.IsMovie != nil && (probe.IsMovie == nil || *c.IsMovie != *probe.IsMovie) {
		return false
	}
	if !optionalStringEqual(c.OriginalTitle, probe.OriginalTitle) {
		return false
	}
	if !optionalStringEqual(c.LocalizedTitle, probe.LocalizedTitle) {
		return false
	}
	if c.Year != nil && (probe.Year == nil || *c.Year != *probe.Year) {
		return false
	}
	if !optionalStringEqual(c.Directors, probe.Directors) {
		return false
	}
	if !optionalStringEqual(c.Creators, probe.Creators) {
		return false
	}
	if !optionalStringEqual(c.Subgenre, probe.Subgenre) {
		return false
	}
	return true
}

func optionalStringEqual(stored, probe *string) bool {
	if stored == nil {
		return true
	}
	if probe == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*stored), strings.TrimSpace(*probe))
}

func scanCorrection(scan func(dest ...any) error) (*Correction, error) {
	var c Correction
	var (
		isMovie, year                           sql.NullInt64
		origTitle, locTitle                     sql.NullString
		directors, creators, subgenre           sql.NullString
	)
	if err := scan(&c.ID, &c.ChannelID, &c.ShowDataID, &isMovie, &origTitle,
		&locTitle, &year, &directors, &creators, &subgenre); err != nil {
		return nil, fmt.Errorf("scan correction: %w", err)
	}
	c.IsMovie = boolPtr(isMovie)
	c.OriginalTitle = stringPtr(origTitle)
	c.LocalizedTitle = stringPtr(locTitle)
	c.Year = intPtr(year)
	c.Directors = stringPtr(directors)
	c.Creators = stringPtr(creators)
	c.Subgenre = stringPtr(subgenre)
	return &c, nil
}
